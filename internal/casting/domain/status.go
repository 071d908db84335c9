// Package domain holds the casting value types: booking statuses and their
// transition table, cast categories, tiers, order modes and schedule values.
package domain

import (
	_ "embed"
	"fmt"
	"slices"

	"casting_ops_backend/platform/apperr"

	"gopkg.in/yaml.v3"
)

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusProvisionalHold Status = "provisional_hold"
	StatusProvisionalCast Status = "provisional_cast"
	StatusPendingResponse Status = "pending_response"
	StatusAwaitingOrder   Status = "awaiting_order"
	StatusConditionalOK   Status = "conditional_ok"
	StatusConfirmedOK     Status = "confirmed_ok"
	StatusConfirmedFinal  Status = "confirmed_final"
	StatusRejected        Status = "rejected"
	StatusCancelled       Status = "cancelled"
	StatusDeleted         Status = "deleted"
)

//go:embed statuses.yaml
var statusesYAML []byte

type statusDef struct {
	Name   Status   `yaml:"name"`
	Label  string   `yaml:"label"`
	Admin  []Status `yaml:"admin"`
	Member []Status `yaml:"member"`
}

type statusTable struct {
	order  []Status
	labels map[Status]string
	admin  map[Status][]Status
	member map[Status][]Status
}

var table = mustLoadTable(statusesYAML)

func mustLoadTable(raw []byte) statusTable {
	t, err := loadTable(raw)
	if err != nil {
		panic("casting: invalid status table: " + err.Error())
	}
	return t
}

func loadTable(raw []byte) (statusTable, error) {
	var doc struct {
		Statuses []statusDef `yaml:"statuses"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return statusTable{}, err
	}

	t := statusTable{
		labels: make(map[Status]string, len(doc.Statuses)),
		admin:  make(map[Status][]Status, len(doc.Statuses)),
		member: make(map[Status][]Status, len(doc.Statuses)),
	}
	for _, def := range doc.Statuses {
		if _, dup := t.labels[def.Name]; dup {
			return statusTable{}, fmt.Errorf("duplicate status %q", def.Name)
		}
		t.order = append(t.order, def.Name)
		t.labels[def.Name] = def.Label
		t.admin[def.Name] = def.Admin
		t.member[def.Name] = def.Member
	}

	for _, s := range []Status{
		StatusProvisionalHold, StatusProvisionalCast, StatusPendingResponse, StatusAwaitingOrder,
		StatusConditionalOK, StatusConfirmedOK, StatusConfirmedFinal, StatusRejected, StatusCancelled, StatusDeleted,
	} {
		if _, ok := t.labels[s]; !ok {
			return statusTable{}, fmt.Errorf("status %q has no entry", s)
		}
	}

	for from, targets := range t.admin {
		for _, to := range targets {
			if _, ok := t.labels[to]; !ok {
				return statusTable{}, fmt.Errorf("%s -> unknown status %q", from, to)
			}
		}
		for _, to := range t.member[from] {
			if !slices.Contains(targets, to) {
				return statusTable{}, fmt.Errorf("member transition %s -> %s is not an admin transition", from, to)
			}
		}
	}

	if cycle := findCycle(t.admin, t.order); cycle != "" {
		return statusTable{}, fmt.Errorf("transition cycle through %q", cycle)
	}
	return t, nil
}

// findCycle runs a DFS over the admin graph and returns a status on a cycle, if any.
func findCycle(graph map[Status][]Status, order []Status) Status {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[Status]int, len(order))

	var visit func(Status) Status
	visit = func(s Status) Status {
		state[s] = visiting
		for _, next := range graph[s] {
			switch state[next] {
			case visiting:
				return next
			case unvisited:
				if c := visit(next); c != "" {
					return c
				}
			}
		}
		state[s] = done
		return ""
	}

	for _, s := range order {
		if state[s] == unvisited {
			if c := visit(s); c != "" {
				return c
			}
		}
	}
	return ""
}

// ParseStatus validates a raw status value.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", apperr.Validation(fmt.Sprintf("unknown status %q", raw))
	}
	return s, nil
}

// AllStatuses returns every status in table order.
func AllStatuses() []Status {
	return slices.Clone(table.order)
}

func (s Status) Valid() bool {
	_, ok := table.labels[s]
	return ok
}

// Label is the display name used in notifications and calendar titles.
func (s Status) Label() string {
	if l, ok := table.labels[s]; ok {
		return l
	}
	return string(s)
}

// Active reports whether a booking in this status occupies the cast's day.
func (s Status) Active() bool {
	switch s {
	case StatusProvisionalHold, StatusProvisionalCast, StatusPendingResponse, StatusAwaitingOrder,
		StatusConditionalOK, StatusConfirmedOK, StatusConfirmedFinal:
		return true
	}
	return false
}

func (s Status) Provisional() bool {
	return s == StatusProvisionalHold || s == StatusProvisionalCast
}

// Confirmation reports the statuses that finalize a cast for the project.
func (s Status) Confirmation() bool {
	return s == StatusConfirmedOK || s == StatusConfirmedFinal
}

// Negative reports the statuses that release the cast's hold.
func (s Status) Negative() bool {
	return s == StatusRejected || s == StatusCancelled
}

// ActiveStatuses lists the statuses that count toward double-booking checks.
func ActiveStatuses() []Status {
	out := make([]Status, 0, len(table.order))
	for _, s := range table.order {
		if s.Active() {
			out = append(out, s)
		}
	}
	return out
}

// AllowedTransitions returns the targets reachable from s for the caller's role.
func AllowedTransitions(from Status, admin bool) []Status {
	if admin {
		return slices.Clone(table.admin[from])
	}
	return slices.Clone(table.member[from])
}

// ValidateTransition rejects any move the caller's table does not list.
func ValidateTransition(from, to Status, admin bool) error {
	if !to.Valid() {
		return apperr.Validation(fmt.Sprintf("unknown status %q", to))
	}
	allowed := AllowedTransitions(from, admin)
	if slices.Contains(allowed, to) {
		return nil
	}

	msg := fmt.Sprintf("cannot change status from %s to %s", from.Label(), to.Label())
	if from == to {
		msg = fmt.Sprintf("booking is already %s", to.Label())
	}
	return apperr.InvalidTransition(msg).WithDetails(map[string]any{
		"from":    from,
		"to":      to,
		"allowed": allowed,
	})
}

// InitialStatus is the status a freshly ordered booking starts in.
func InitialStatus(mode Mode, castType CastType) Status {
	if mode == ModeShooting {
		return StatusProvisionalHold
	}
	if castType == CastExternal {
		return StatusConfirmedFinal
	}
	return StatusProvisionalCast
}
