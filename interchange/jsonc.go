package interchange

import (
	"github.com/tidwall/jsonc"

	"github.com/wippyai/hostserde/host"
)

// ParseJSONC strips comments and trailing commas from data, then parses
// the result like JSON.parse.
func ParseJSONC(data []byte) (host.Value, error) {
	return host.ParseJSON(jsonc.ToJSON(data))
}
