package inline

import (
	"fmt"
	"strings"

	"github.com/vincent-petithory/dataurl"
)

// DataURI returns a base64 data URI carrying data with the given media type.
// mime must be of the form "type/subtype".
func DataURI(mime string, data []byte) string {
	return dataurl.New(data, mime).String()
}

// IsDataURI reports whether ref is a data URI rather than a file reference.
func IsDataURI(ref string) bool {
	ref = strings.TrimSpace(ref)
	return len(ref) >= 5 && strings.EqualFold(ref[:5], "data:")
}

// ParseDataURI decodes a data URI into its media type and payload.
func ParseDataURI(ref string) (mime string, data []byte, err error) {
	du, err := dataurl.DecodeString(strings.TrimSpace(ref))
	if err != nil {
		return "", nil, fmt.Errorf("parsing data URI: %w", err)
	}
	return du.ContentType(), du.Data, nil
}
