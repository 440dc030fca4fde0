package roehn

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Load is a room load output node: CircuitLoad, ShadeLoad, HVACLoad, or an
// UnknownLoad carried through unchanged.
type Load interface {
	NodeGUID() uuid.UUID
	NodeName() string
	units() []*Unit
}

// CircuitLoad is a light circuit, switched or dimmed.
type CircuitLoad struct {
	NodeType    string    `json:"$type"`
	LoadType    int       `json:"LoadType"`
	IconPath    int       `json:"IconPath"`
	Power       float64   `json:"Power"`
	ProfileGuid uuid.UUID `json:"ProfileGuid"`
	Unit        *Unit     `json:"Unit"`
	Name        string    `json:"Name"`
	Guid        uuid.UUID `json:"Guid"`
	Description string    `json:"Description"`
}

func (l *CircuitLoad) NodeGUID() uuid.UUID { return l.Guid }
func (l *CircuitLoad) NodeName() string    { return l.Name }
func (l *CircuitLoad) units() []*Unit      { return []*Unit{l.Unit} }

// Dimmable reports whether the load uses the dimmer profile.
func (l *CircuitLoad) Dimmable() bool {
	return l.LoadType == LoadTypeDimmer || l.ProfileGuid == ProfileDimmer
}

// ShadeLoad is a motorised shade with three units.
type ShadeLoad struct {
	NodeType             string    `json:"$type"`
	ShadeType            int       `json:"ShadeType"`
	ShadeIcon            int       `json:"ShadeIcon"`
	ProfileGuid          uuid.UUID `json:"ProfileGuid"`
	UnitMovement         *Unit     `json:"UnitMovement"`
	UnitOpenedPercentage *Unit     `json:"UnitOpenedPercentage"`
	UnitCurrentPosition  *Unit     `json:"UnitCurrentPosition"`
	Name                 string    `json:"Name"`
	Guid                 uuid.UUID `json:"Guid"`
	Description          string    `json:"Description"`
}

func (l *ShadeLoad) NodeGUID() uuid.UUID { return l.Guid }
func (l *ShadeLoad) NodeName() string    { return l.Name }
func (l *ShadeLoad) units() []*Unit {
	return []*Unit{l.UnitMovement, l.UnitOpenedPercentage, l.UnitCurrentPosition}
}

// HVACLoad is an air-conditioning unit driven through an IR module.
type HVACLoad struct {
	NodeType         string    `json:"$type"`
	ProfileGuid      uuid.UUID `json:"ProfileGuid"`
	ControlModelGuid uuid.UUID `json:"ControlModelGuid"`
	Unit             *Unit     `json:"Unit"`
	Name             string    `json:"Name"`
	Guid             uuid.UUID `json:"Guid"`
	Description      string    `json:"Description"`
}

func (l *HVACLoad) NodeGUID() uuid.UUID { return l.Guid }
func (l *HVACLoad) NodeName() string    { return l.Name }
func (l *HVACLoad) units() []*Unit      { return []*Unit{l.Unit} }

// UnknownLoad preserves a load of a type this package does not model.
type UnknownLoad struct {
	Type string
	Guid uuid.UUID
	Name string
	raw  json.RawMessage
}

func (l *UnknownLoad) NodeGUID() uuid.UUID { return l.Guid }
func (l *UnknownLoad) NodeName() string    { return l.Name }
func (l *UnknownLoad) units() []*Unit      { return nil }

// MarshalJSON writes the node back exactly as it was read.
func (l *UnknownLoad) MarshalJSON() ([]byte, error) {
	return l.raw, nil
}

// Loads is a heterogeneous list of load nodes keyed by "$type".
type Loads []Load

// UnmarshalJSON implements json.Unmarshaler.
func (ls *Loads) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return fmt.Errorf("load outputs: %w", err)
	}

	out := make(Loads, 0, len(raws))
	for i, raw := range raws {
		var head struct {
			Type string    `json:"$type"`
			Guid uuid.UUID `json:"Guid"`
			Name string    `json:"Name"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			return fmt.Errorf("load output %d: %w", i, err)
		}

		var load Load
		switch head.Type {
		case TypeCircuit:
			load = &CircuitLoad{}
		case TypeShade:
			load = &ShadeLoad{}
		case TypeHVAC:
			load = &HVACLoad{}
		default:
			out = append(out, &UnknownLoad{Type: head.Type, Guid: head.Guid, Name: head.Name, raw: raw})
			continue
		}
		if err := json.Unmarshal(raw, load); err != nil {
			return fmt.Errorf("load output %d (%s): %w", i, head.Type, err)
		}
		out = append(out, load)
	}
	*ls = out
	return nil
}
