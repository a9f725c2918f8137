// Package authz decides which GymView features a signed-in role may use.
//
// The backend remains the authority on every request; these checks let a
// client hide or refuse features up front, the same way the mobile app only
// shows the attendance tab to staff and the routines tab to trainers and members.
package authz

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Feature is a user-facing area of the application.
type Feature string

const (
	FeatureDashboard  Feature = "dashboard"
	FeatureAsistencia Feature = "asistencia"
	FeatureRutinas    Feature = "rutinas"
	FeaturePerfil     Feature = "perfil"
)

// Role names as sent by the API in the user's "rol" field.
const (
	RoleAdmin         = "admin"
	RoleRecepcionista = "recepcionista"
	RoleEntrenador    = "entrenador"
	RoleCliente       = "cliente"
)

// Policy lists the roles allowed to use a feature. An empty RequiredRoles
// allows any signed-in role.
type Policy struct {
	RequiredRoles []string
}

// ErrPermissionDenied indicates that authorization requirements are not satisfied.
var ErrPermissionDenied = errors.New("authorization: permission denied")

// PermissionDeniedError carries structured authorization failure details.
type PermissionDeniedError struct {
	Feature      Feature
	Role         string
	AllowedRoles []string
}

// Error returns a concise authorization error message.
func (e *PermissionDeniedError) Error() string {
	switch {
	case e.Role == "":
		return fmt.Sprintf("authorization: %s requires a signed-in user", e.Feature)
	case len(e.AllowedRoles) == 0:
		return fmt.Sprintf("authorization: %s is not available", e.Feature)
	default:
		return fmt.Sprintf("authorization: %s requires one of the roles %v, have %q", e.Feature, e.AllowedRoles, e.Role)
	}
}

// Is enables errors.Is(err, ErrPermissionDenied).
func (e *PermissionDeniedError) Is(target error) bool {
	return target == ErrPermissionDenied
}

// DefaultPolicies returns the role requirements of the GymView app.
func DefaultPolicies() map[Feature]Policy {
	return map[Feature]Policy{
		FeatureDashboard:  {},
		FeatureAsistencia: {RequiredRoles: []string{RoleAdmin, RoleRecepcionista}},
		FeatureRutinas:    {RequiredRoles: []string{RoleEntrenador, RoleCliente}},
		FeaturePerfil:     {},
	}
}

// featureOrder is the display order used by Features.
var featureOrder = []Feature{FeatureDashboard, FeatureAsistencia, FeatureRutinas, FeaturePerfil}

// Evaluator evaluates feature policies against a user's role.
type Evaluator struct {
	policies map[Feature][]string
	order    []Feature
}

// NewEvaluator creates an evaluator. Role names are trimmed and de-duplicated;
// features missing from policies are denied.
func NewEvaluator(policies map[Feature]Policy) *Evaluator {
	e := &Evaluator{policies: make(map[Feature][]string, len(policies))}
	for feature, policy := range policies {
		e.policies[feature] = normalizeValues(policy.RequiredRoles)
	}

	for _, feature := range featureOrder {
		if _, ok := e.policies[feature]; ok {
			e.order = append(e.order, feature)
		}
	}
	var extra []Feature
	for feature := range e.policies {
		if !contains(featureOrder, feature) {
			extra = append(extra, feature)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	e.order = append(e.order, extra...)
	return e
}

// Authorize reports whether role may use feature. An empty role means no
// user is signed in and is always denied.
func (e *Evaluator) Authorize(role string, feature Feature) error {
	role = strings.TrimSpace(role)

	required, known := e.policies[feature]
	if !known {
		return &PermissionDeniedError{Feature: feature, Role: role}
	}
	if role == "" {
		return &PermissionDeniedError{Feature: feature, AllowedRoles: copyValues(required)}
	}
	if len(required) == 0 || contains(required, role) {
		return nil
	}
	return &PermissionDeniedError{Feature: feature, Role: role, AllowedRoles: copyValues(required)}
}

// Features lists the features role may use, in display order.
func (e *Evaluator) Features(role string) []Feature {
	var out []Feature
	for _, feature := range e.order {
		if e.Authorize(role, feature) == nil {
			out = append(out, feature)
		}
	}
	return out
}

// Authorize is a convenience function for one-off checks against DefaultPolicies.
func Authorize(role string, feature Feature) error {
	return NewEvaluator(DefaultPolicies()).Authorize(role, feature)
}

func normalizeValues(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	result := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		normalized := strings.TrimSpace(value)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		result = append(result, normalized)
	}

	if len(result) == 0 {
		return nil
	}

	return result
}

func copyValues(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}

func contains[T comparable](values []T, v T) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
