package domain

// Profile is a customer identity record reachable through the phone index.
type Profile struct {
	UserID    string `json:"user_id" yaml:"user_id"`
	Phone     string `json:"phone" yaml:"phone"`
	FirstName string `json:"first_name" yaml:"first_name"`
	LastName  string `json:"last_name" yaml:"last_name"`
}

// FullName returns the profile's first and last name.
func (p *Profile) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}
