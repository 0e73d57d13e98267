// Package roster manages the master list of participants. Membership is
// edited out of band; the voting day only ever reads it.
package roster

// Person is one roster entry. SlackUserID is optional and only used to
// @-mention the person in reminders.
type Person struct {
	Name        string
	SlackUserID string
	Active      bool
}
