package design

import (
	"time"

	"github.com/google/uuid"
)

// Project statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusDone     = "done"
)

// Project is the root of a design. OwnerID is the opaque id of the user who
// created it.
type Project struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Area is a named part of a project (floor, wing, outbuilding).
type Area struct {
	ID        int64  `json:"id"`
	ProjectID int64  `json:"project_id"`
	Name      string `json:"name"`
}

// Room is a space inside an area.
type Room struct {
	ID     int64  `json:"id"`
	AreaID int64  `json:"area_id"`
	Name   string `json:"name"`
}

// Board is an automation board (electrical panel) that physically houses modules.
type Board struct {
	ID     int64  `json:"id"`
	RoomID int64  `json:"room_id"`
	Name   string `json:"name"`
	Notes  string `json:"notes,omitempty"`
}

// Circuit is a controllable load in a room.
//
// Non-HVAC circuits own the SAK range [SAK, SAK+SAKCount). HVAC circuits
// have SAK 0 and SAKCount 0.
type Circuit struct {
	ID         int64       `json:"id"`
	ProjectID  int64       `json:"project_id"`
	RoomID     int64       `json:"room_id"`
	Identifier string      `json:"identifier"`
	Name       string      `json:"name"`
	Kind       CircuitKind `json:"kind"`
	Dimmable   bool        `json:"dimmable"`
	Power      float64     `json:"power"`
	SAK        int         `json:"sak,omitempty"`
	SAKCount   int         `json:"sak_count,omitempty"`
}

// HasSAK reports whether the circuit owns an address range.
func (c Circuit) HasSAK() bool {
	return c.SAK > 0 && c.SAKCount > 0
}

// Module is a control module on the automation network.
type Module struct {
	ID             int64      `json:"id"`
	ProjectID      int64      `json:"project_id"`
	BoardID        *int64     `json:"board_id,omitempty"`
	Name           string     `json:"name"`
	Kind           ModuleKind `json:"kind"`
	NetworkAddress int        `json:"network_address"`
	DeviceID       int        `json:"device_id"`
}

// Link binds a circuit to one channel of a module.
type Link struct {
	ID        int64 `json:"id"`
	CircuitID int64 `json:"circuit_id"`
	ModuleID  int64 `json:"module_id"`
	Channel   int   `json:"channel"`
}

// Keypad defaults.
const (
	DefaultKeypadModel = "RQR-K"
	DefaultKeypadColor = "WHITE"

	// KeypadNetworkFloor is the lowest network address handed to keypads.
	KeypadNetworkFloor = 110

	// MaxEngravingLength bounds the text engraved on a key.
	MaxEngravingLength = 7
)

// Keypad is a wall keypad. It owns exactly ButtonCount buttons.
type Keypad struct {
	ID             int64          `json:"id"`
	ProjectID      int64          `json:"project_id"`
	RoomID         int64          `json:"room_id"`
	Name           string         `json:"name"`
	Model          string         `json:"model"`
	Color          string         `json:"color"`
	ButtonColor    string         `json:"button_color"`
	ButtonCount    int            `json:"button_count"`
	NetworkAddress int            `json:"network_address"`
	DeviceID       int            `json:"device_id"`
	Notes          string         `json:"notes,omitempty"`
	Buttons        []KeypadButton `json:"buttons"`
}

// Button action defaults.
const (
	// ModeUnassigned is the mode of a key with no target.
	ModeUnassigned = 3
	// ModeToggle is the mode given to a key bound to a target.
	ModeToggle = 2
)

// KeypadButton is one key of a keypad. It targets at most one of a circuit
// or a scene.
type KeypadButton struct {
	ID                 int64       `json:"id"`
	KeypadID           int64       `json:"keypad_id"`
	Ordinal            int         `json:"ordinal"`
	GUID               uuid.UUID   `json:"guid"`
	CircuitID          *int64      `json:"circuit_id,omitempty"`
	SceneID            *int64      `json:"scene_id,omitempty"`
	Mode               int         `json:"mode"`
	CommandOn          int         `json:"command_on"`
	CommandOff         int         `json:"command_off"`
	CanHold            bool        `json:"can_hold"`
	DoublePressMode    int         `json:"double_press_mode"`
	DoublePressCommand int         `json:"double_press_command"`
	Engraving          string      `json:"engraving,omitempty"`
	Icon               string      `json:"icon,omitempty"`
	Rocker             bool        `json:"rocker"`
	RockerStyle        RockerStyle `json:"rocker_style"`
	Notes              string      `json:"notes,omitempty"`
}

// NewKeypadButton returns an unbound button with default action codes.
func NewKeypadButton(ordinal int) KeypadButton {
	return KeypadButton{
		Ordinal:         ordinal,
		GUID:            uuid.New(),
		Mode:            ModeUnassigned,
		DoublePressMode: ModeUnassigned,
		RockerStyle:     RockerUpDown,
	}
}

// Scene is a stored set of actions recalled as one.
//
// Movers switches the controller to the shade-mover combination operator.
type Scene struct {
	ID      int64     `json:"id"`
	RoomID  int64     `json:"room_id"`
	GUID    uuid.UUID `json:"guid"`
	Name    string    `json:"name"`
	Movers  bool      `json:"movers"`
	Actions []Action  `json:"actions"`
}

// Scene level defaults.
const (
	DefaultActionLevel   = 100
	DefaultOverrideLevel = 50
)

// Action is one step of a scene. Single actions set CircuitID; group
// actions set RoomID and may carry per-circuit overrides.
type Action struct {
	ID        int64      `json:"id"`
	SceneID   int64      `json:"scene_id"`
	Kind      ActionKind `json:"kind"`
	Level     int        `json:"level"`
	CircuitID *int64     `json:"circuit_id,omitempty"`
	RoomID    *int64     `json:"room_id,omitempty"`
	Overrides []Override `json:"overrides,omitempty"`
}

// Override replaces the group default for one circuit of a group action.
type Override struct {
	ID        int64 `json:"id"`
	ActionID  int64 `json:"action_id"`
	CircuitID int64 `json:"circuit_id"`
	Enabled   bool  `json:"enabled"`
	Level     int   `json:"level"`
}

// ID returns a pointer to id, for optional foreign keys.
func ID(id int64) *int64 {
	return &id
}
