package release

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/avado-dnp/nimbus-upstream-sync/internal/domain/upstream"
)

// errMissingTag is returned when the release body has no tag_name member.
var errMissingTag = errors.New("release has no tag_name")

// decodeRelease reads tag_name strictly. The remaining fields are only
// logged, so a member with an unexpected type or format is left at its zero value.
func decodeRelease(data []byte) (*upstream.Release, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, err
	}

	rawTag, ok := members["tag_name"]
	if !ok {
		return nil, errMissingTag
	}

	var rel upstream.Release
	if err := json.Unmarshal(rawTag, &rel.TagName); err != nil {
		return nil, fmt.Errorf("tag_name: %w", err)
	}

	decodeOptional(members["name"], &rel.Name)
	decodeOptional(members["html_url"], &rel.HTMLURL)
	decodeOptional(members["published_at"], &rel.PublishedAt)

	return &rel, nil
}

func decodeOptional(raw json.RawMessage, dst any) {
	if len(raw) == 0 {
		return
	}

	_ = json.Unmarshal(raw, dst)
}
