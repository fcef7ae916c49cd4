package core

import "fmt"

// Identity names whoever issues commands against a database.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (i Identity) String() string {
	if i.Email == "" {
		return i.Name
	}
	return fmt.Sprintf("%s <%s>", i.Name, i.Email)
}
