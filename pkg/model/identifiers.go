// Package model defines the value types shared by the strategy host and its
// collaborators: identifiers, market data, orders, positions, commands and
// execution events.
package model

import (
	"fmt"
	"strings"
)

// IDTag is the order-id tag component of a strategy identity. It namespaces
// every identifier the strategy generates so that two strategies of the same
// type never collide.
type IDTag string

// NewIDTag validates and returns an IDTag.
func NewIDTag(value string) (IDTag, error) {
	if err := validateIDPart("id tag", value); err != nil {
		return "", err
	}
	return IDTag(value), nil
}

// TraderID identifies the trader owning one or more strategy hosts.
type TraderID struct {
	Name string `json:"name"`
	Tag  string `json:"tag"`
}

// NewTraderID validates and returns a TraderID.
func NewTraderID(name, tag string) (TraderID, error) {
	if err := validateIDPart("trader name", name); err != nil {
		return TraderID{}, err
	}
	if err := validateIDPart("trader tag", tag); err != nil {
		return TraderID{}, err
	}
	return TraderID{Name: name, Tag: tag}, nil
}

// String returns the name-tag form, e.g. "TRADER-001".
func (id TraderID) String() string {
	return id.Name + "-" + id.Tag
}

// StrategyID is the immutable identity of a strategy host: the strategy type
// name paired with its order-id tag. It is the lookup key for all state
// queries against the execution subsystem.
type StrategyID struct {
	Name string `json:"name"`
	Tag  string `json:"tag"`
}

// NewStrategyID validates and returns a StrategyID.
func NewStrategyID(name string, tag IDTag) (StrategyID, error) {
	if err := validateIDPart("strategy name", name); err != nil {
		return StrategyID{}, err
	}
	if tag == "" {
		return StrategyID{}, fmt.Errorf("strategy id tag cannot be empty")
	}
	return StrategyID{Name: name, Tag: string(tag)}, nil
}

// String returns the name-tag form, e.g. "EMACross-001".
func (id StrategyID) String() string {
	return id.Name + "-" + id.Tag
}

// IsZero returns true if the identity has not been set.
func (id StrategyID) IsZero() bool {
	return id.Name == "" && id.Tag == ""
}

// OrderID identifies a single order.
type OrderID string

// PositionID identifies a single position.
type PositionID string

// AccountID identifies a trading account at the execution subsystem.
type AccountID string

func validateIDPart(what, value string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", what)
	}
	if strings.ContainsAny(value, " \t\n") {
		return fmt.Errorf("%s cannot contain whitespace: %q", what, value)
	}
	return nil
}
