// Command upstream-sync bumps the package to the latest upstream release.
package main

import "github.com/avado-dnp/nimbus-upstream-sync/cmd/upstream-sync/cmd"

func main() {
	cmd.Execute()
}
