package switchboard

import "context"

const whoamiQuery = `query WhoAmI($address: String!) {
  whoami(address: $address) {
    address
    isAdmin
    isUser
    isGuest
  }
}`

// WhoAmI resolves the global role of the given address. The role is
// independent of any per-resource grant and is advisory only; callers that
// hit an error here should fall back to a guest-equivalent posture rather
// than assume privilege.
func (c *Client) WhoAmI(ctx context.Context, address string) (Identity, error) {
	var out struct {
		WhoAmI Identity `json:"whoami"`
	}
	err := c.do(ctx, "whoami", whoamiQuery, map[string]any{"address": address}, &out)
	if err != nil {
		return Identity{}, err
	}
	return out.WhoAmI, nil
}
