package services

import (
	"encoding/json"
	"strconv"
	"strings"

	"stockroom-backend/models"
)

// ActionType is the kind of a stock mutation
type ActionType string

const (
	ActionStockIn  ActionType = "stock_in"
	ActionStockOut ActionType = "stock_out"
	ActionMove     ActionType = "move"
)

func (a ActionType) Valid() bool {
	switch a {
	case ActionStockIn, ActionStockOut, ActionMove:
		return true
	}
	return false
}

// MutationRequest is one stock_in, stock_out or move against a product's ledger.
// LocationType is the target for stock_in/stock_out, MoveFromType the source for move.
type MutationRequest struct {
	ProductID    string
	Action       ActionType
	Quantity     int
	Reason       string
	LocationType models.LocationType
	MoveFromType models.LocationType
}

// Validate runs every check that needs no store access
func (r MutationRequest) Validate() error {
	if r.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	switch r.Action {
	case ActionStockIn, ActionStockOut:
		if !r.LocationType.Valid() {
			return ErrInvalidLocationType
		}
	case ActionMove:
		if !r.MoveFromType.Valid() {
			return ErrInvalidLocationType
		}
	default:
		return ErrInvalidAction
	}
	if strings.TrimSpace(r.ProductID) == "" {
		return ErrProductNotFound
	}
	return nil
}

// ParseQuantity accepts a JSON number or a numeric JSON string holding a positive integer
func ParseQuantity(raw json.RawMessage) (int, error) {
	s := strings.TrimSpace(string(raw))
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return 0, ErrInvalidQuantity
		}
		s = strings.TrimSpace(str)
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, ErrInvalidQuantity
	}
	return n, nil
}

// Ledger is the pair of location rows every product owns
type Ledger struct {
	Main   models.ProductLocation
	Safety models.ProductLocation
}

// NewLedger requires exactly one main and one safety row
func NewLedger(rows []models.ProductLocation) (*Ledger, error) {
	var l Ledger
	var haveMain, haveSafety bool
	for _, row := range rows {
		switch row.Type {
		case models.LocationMain:
			if haveMain {
				return nil, ErrCorruptProductState
			}
			l.Main, haveMain = row, true
		case models.LocationSafety:
			if haveSafety {
				return nil, ErrCorruptProductState
			}
			l.Safety, haveSafety = row, true
		default:
			return nil, ErrCorruptProductState
		}
	}
	if !haveMain || !haveSafety {
		return nil, ErrCorruptProductState
	}
	return &l, nil
}

// At returns the row of the given type
func (l *Ledger) At(t models.LocationType) *models.ProductLocation {
	if t == models.LocationMain {
		return &l.Main
	}
	return &l.Safety
}

// Total is main plus safety
func (l *Ledger) Total() int {
	return l.Main.Quantity + l.Safety.Quantity
}

// Rows returns main then safety
func (l *Ledger) Rows() []models.ProductLocation {
	return []models.ProductLocation{l.Main, l.Safety}
}

// LogFields describes an applied mutation for the audit log.
// LocationFrom and LocationTo are set for move only.
type LogFields struct {
	ActionType   ActionType
	Quantity     int
	Reason       *string
	LocationFrom *string
	LocationTo   *string
}

// Apply changes the in-memory ledger and returns the rows to persist, in write order.
// On error the ledger is left untouched.
func (l *Ledger) Apply(req MutationRequest) ([]*models.ProductLocation, LogFields, error) {
	fields := LogFields{
		ActionType: req.Action,
		Quantity:   req.Quantity,
	}
	if reason := strings.TrimSpace(req.Reason); reason != "" {
		fields.Reason = &reason
	}

	switch req.Action {
	case ActionStockIn:
		target := l.At(req.LocationType)
		target.Quantity += req.Quantity
		return []*models.ProductLocation{target}, fields, nil

	case ActionStockOut:
		target := l.At(req.LocationType)
		if target.Quantity < req.Quantity {
			return nil, LogFields{}, &InsufficientStockError{Location: target.Name, Current: target.Quantity, Requested: req.Quantity}
		}
		target.Quantity -= req.Quantity
		return []*models.ProductLocation{target}, fields, nil

	case ActionMove:
		source := l.At(req.MoveFromType)
		dest := l.At(req.MoveFromType.Other())
		if source.Quantity < req.Quantity {
			return nil, LogFields{}, &InsufficientStockError{Location: source.Name, Current: source.Quantity, Requested: req.Quantity}
		}
		source.Quantity -= req.Quantity
		dest.Quantity += req.Quantity
		from, to := source.Name, dest.Name
		fields.LocationFrom = &from
		fields.LocationTo = &to
		// source first: the decrement is written before the increment
		return []*models.ProductLocation{source, dest}, fields, nil
	}
	return nil, LogFields{}, ErrInvalidAction
}
