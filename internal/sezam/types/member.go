package types

// Member is one row of the access registry. ExternalID is the member's
// messaging-platform user id and the identity key; the registry itself is
// maintained out of band, the server only reads it (except for the link
// resolver rewriting ExternalID). JSON tags match the wire format the door
// controller already consumes.
type Member struct {
	Name       string `json:"name"`
	GroupTag   string `json:"eliteGroup"`
	Role       string `json:"role"`
	ExternalID string `json:"vkId"`
	PINHash    string `json:"pinHash"`
	CardHash   string `json:"cardHash"`
}
