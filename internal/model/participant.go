package model

import "strings"

// Individual holds the contact details of a single registrant.  The
// same structure doubles as the leader block of a team registration.
//
// Fields:
//
//	FullName – registrant's display name (required).
//	Email    – contact email (required).
//	Phone    – contact phone (optional).
type Individual struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
}

// Team describes a group registering under one ledger entry.  The
// leader carries the contact details; members are names only.
//
// Fields:
//
//	Name    – team name (required).
//	Leader  – contact details of the responsible person.
//	Members – remaining team members (may be empty).
type Team struct {
	Name    string       `json:"name"`
	Leader  Individual   `json:"leader"`
	Members []Individual `json:"members,omitempty"`
}

// Participant is the tagged payload attached to a ledger entry.
// Exactly one of Individual or Team is set, matching Mode.  The
// variant form keeps the individual/team distinction out of loosely
// typed optional fields.
type Participant struct {
	Mode       ParticipantMode `json:"mode"`
	Individual *Individual     `json:"individual,omitempty"`
	Team       *Team           `json:"team,omitempty"`
}

// Validate checks that the payload matches its declared mode and that
// the required fields of the active variant are present.  It returns
// a human-readable reason when the payload is unusable.
func (p *Participant) Validate() (string, bool) {
	switch p.Mode {
	case ModeIndividual:
		if p.Individual == nil || p.Team != nil {
			return "individual registration requires an individual payload", false
		}
		if strings.TrimSpace(p.Individual.FullName) == "" {
			return "participant full_name is required", false
		}
		if strings.TrimSpace(p.Individual.Email) == "" {
			return "participant email is required", false
		}
	case ModeTeam:
		if p.Team == nil || p.Individual != nil {
			return "team registration requires a team payload", false
		}
		if strings.TrimSpace(p.Team.Name) == "" {
			return "team name is required", false
		}
		if strings.TrimSpace(p.Team.Leader.FullName) == "" {
			return "team leader full_name is required", false
		}
		if strings.TrimSpace(p.Team.Leader.Email) == "" {
			return "team leader email is required", false
		}
	default:
		return "unknown participant mode", false
	}
	return "", true
}
