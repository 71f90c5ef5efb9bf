// Package roles folds raw role claims into canonical roles. All role
// matching in the codebase goes through Normalize; nothing else compares
// role strings.
package roles

import (
	"strings"

	"github.com/maniyoussef/ticketflow/internal/domain/enums"
	"github.com/maniyoussef/ticketflow/internal/domain/model"
)

// Legacy numeric role codes still emitted by older backend rows.
var legacyCodes = map[int64]enums.Role{
	1: enums.RoleAdmin,
	2: enums.RoleClient,
	3: enums.RoleProjectLead,
	4: enums.RoleContributor,
}

// Known labels keyed by their folded form. The legacy "USER" label maps
// to CLIENT: the two were historically conflated and are treated as
// synonyms, not as distinct roles.
var synonyms = map[string]enums.Role{
	"admin":          enums.RoleAdmin,
	"administrateur": enums.RoleAdmin,
	"administrator":  enums.RoleAdmin,
	"project lead":   enums.RoleProjectLead,
	"project manager": enums.RoleProjectLead,
	"chef projet":    enums.RoleProjectLead,
	"chef de projet": enums.RoleProjectLead,
	"contributor":    enums.RoleContributor,
	"collaborateur":  enums.RoleContributor,
	"collaborator":   enums.RoleContributor,
	"client":         enums.RoleClient,
	"user":           enums.RoleClient,
	"utilisateur":    enums.RoleClient,
}

var accentFolder = strings.NewReplacer(
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"à", "a", "â", "a", "ä", "a",
	"î", "i", "ï", "i",
	"ô", "o", "ö", "o",
	"û", "u", "ù", "u", "ü", "u",
	"ç", "c",
)

// Normalize maps a raw claim to its canonical role. Matching order:
// legacy numeric code, folded label match, then the substring heuristic.
// The second return value is false when no rule matched; callers must
// treat that as "claim present but not authoritative", never as a denial.
func Normalize(claim model.RoleClaim) (enums.Role, bool) {
	if claim.ID != 0 {
		if role, ok := legacyCodes[claim.ID]; ok {
			return role, true
		}
	}

	folded := fold(claim.Name)
	if folded == "" {
		return enums.RoleNone, false
	}

	if role, ok := synonyms[folded]; ok {
		return role, true
	}

	if role, ok := heuristic(folded); ok {
		return role, true
	}

	return enums.RoleNone, false
}

// heuristic resolves free text that carries both a role-family token and
// a qualifier token, e.g. "le chef du projet X".
func heuristic(folded string) (enums.Role, bool) {
	has := func(token string) bool { return strings.Contains(folded, token) }

	switch {
	case has("chef") && has("projet"):
		return enums.RoleProjectLead, true
	case has("project") && (has("lead") || has("manager")):
		return enums.RoleProjectLead, true
	}
	return enums.RoleNone, false
}

// fold lowercases, strips accents and collapses separators so that
// "Chef_Projet" and "chef projet" compare equal.
func fold(name string) string {
	lowered := accentFolder.Replace(strings.ToLower(strings.TrimSpace(name)))
	fields := strings.FieldsFunc(lowered, func(r rune) bool {
		return r == ' ' || r == '_' || r == '-' || r == '\t'
	})
	return strings.Join(fields, " ")
}
