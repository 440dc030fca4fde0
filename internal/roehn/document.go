package roehn

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Node type discriminators.
const (
	TypeProject        = "Project"
	TypeArea           = "Area"
	TypeRoom           = "Room"
	TypeBoard          = "AutomationBoard"
	TypeModule         = "Module"
	TypeModuleHVAC     = "ModuleHVAC"
	TypeSlot           = "Slot"
	TypeUnit           = "Unit"
	TypeUnitComposer   = "UnitComposer"
	TypeCircuit        = "Circuit"
	TypeShade          = "Shade"
	TypeHVAC           = "HVAC"
	TypeKeypad         = "Keypad"
	TypeKeypadButton   = "RockerKeypadButton"
	TypeStyleProps     = "Dictionary`2"
	TypeScene          = "Scene"
	TypeSceneAction    = "SceneAction"
	TypeCustomAction   = "CustomAction"
	TypeSpecialAction  = "SpecialAction"
	TypeVariable       = "Variable"
	TypeClientInfo     = "ClientInfo"
	TypeProgrammerInfo = "ProgrammerInfo"
	TypeCloudConfig    = "CloudConfig"
)

// Project is the document root.
type Project struct {
	NodeType             string            `json:"$type"`
	Areas                []*Area           `json:"Areas"`
	Scenes               []*Scene          `json:"Scenes"`
	Scripts              []json.RawMessage `json:"Scripts"`
	Variables            []*Variable       `json:"Variables"`
	SpecialActions       []*SpecialAction  `json:"SpecialActions"`
	SavedProfiles        json.RawMessage   `json:"SavedProfiles"`
	SavedControlModels   json.RawMessage   `json:"SavedControlModels"`
	ClientInfo           *ClientInfo       `json:"ClientInfo"`
	Name                 string            `json:"Name"`
	Path                 *string           `json:"Path"`
	Guid                 uuid.UUID         `json:"Guid"`
	Created              string            `json:"Created"`
	LastModified         string            `json:"LastModified"`
	LastUpload           *string           `json:"LastUpload"`
	LastTimeSaved        string            `json:"LastTimeSaved"`
	ProgrammerInfo       *ProgrammerInfo   `json:"ProgrammerInfo"`
	CloudConfig          *CloudConfig      `json:"CloudConfig"`
	ProjectSchemaVersion int               `json:"ProjectSchemaVersion"`
	SoftwareVersion      string            `json:"SoftwareVersion"`
	SelectedTimeZoneID   string            `json:"SelectedTimeZoneID"`
	Latitude             float64           `json:"Latitude"`
	Longitude            float64           `json:"Longitude"`
	Notes                *string           `json:"Notes"`
	RoehnAppExport       bool              `json:"RoehnAppExport"`

	dropped []string
}

// Area groups rooms.
type Area struct {
	NodeType             string            `json:"$type"`
	Scenes               []*Scene          `json:"Scenes"`
	Scripts              []json.RawMessage `json:"Scripts"`
	Variables            []*Variable       `json:"Variables"`
	SpecialActions       []*SpecialAction  `json:"SpecialActions"`
	Guid                 uuid.UUID         `json:"Guid"`
	Name                 string            `json:"Name"`
	Notes                string            `json:"Notes"`
	NotDisplayOnROEHNApp bool              `json:"NotDisplayOnROEHNApp"`
	SubItems             []*Room           `json:"SubItems"`
}

// Room holds loads, keypads, boards and scenes.
type Room struct {
	NodeType             string            `json:"$type"`
	NotDisplayOnROEHNApp bool              `json:"NotDisplayOnROEHNApp"`
	Name                 string            `json:"Name"`
	Notes                *string           `json:"Notes"`
	Scenes               []*Scene          `json:"Scenes"`
	Scripts              []json.RawMessage `json:"Scripts"`
	Variables            []*Variable       `json:"Variables"`
	LoadOutputs          Loads             `json:"LoadOutputs"`
	UserInterfaces       []*Keypad         `json:"UserInterfaces"`
	AutomationBoards     []*Board          `json:"AutomationBoards"`
	SpecialActions       []*SpecialAction  `json:"SpecialActions"`
	Guid                 uuid.UUID         `json:"Guid"`
}

// Board is an automation board (electrical panel) holding modules.
type Board struct {
	NodeType    string    `json:"$type"`
	Name        string    `json:"Name"`
	Guid        uuid.UUID `json:"Guid"`
	Notes       *string   `json:"Notes"`
	ModulesList []*Module `json:"ModulesList"`
}

// Module is a device on the HSNET bus. HVAC modules use NodeType
// ModuleHVAC and carry their composers in SubItemComposers.
type Module struct {
	NodeType              string             `json:"$type"`
	SubItemComposers      [][]*UnitComposer  `json:"SubItemComposers,omitempty"`
	GTWItemComposers      *[]json.RawMessage `json:"GTWItemComposers,omitempty"`
	Name                  string             `json:"Name"`
	DriverGuid            uuid.UUID          `json:"DriverGuid"`
	Guid                  uuid.UUID          `json:"Guid"`
	IpAddress             string             `json:"IpAddress"`
	HsnetAddress          int                `json:"HsnetAddress"`
	PollTiming            int                `json:"PollTiming"`
	Disabled              bool               `json:"Disabled"`
	RemotePort            int                `json:"RemotePort"`
	RemoteIpAddress       *string            `json:"RemoteIpAddress"`
	Notes                 *string            `json:"Notes"`
	Logicserver           bool               `json:"Logicserver"`
	DevID                 int                `json:"DevID"`
	DevIDSlave            int                `json:"DevIDSlave"`
	UnitComposers         []*UnitComposer    `json:"UnitComposers"`
	Slots                 []*Slot            `json:"Slots"`
	SmartGroup            int                `json:"SmartGroup"`
	UserInterfaceGuid     Ref                `json:"UserInterfaceGuid"`
	PIRSensorReportEnable bool               `json:"PIRSensorReportEnable"`
	PIRSensorReportID     int                `json:"PIRSensorReportID"`
}

// Slot returns the module slot with the given name.
func (m *Module) Slot(name string) *Slot {
	for _, s := range m.Slots {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Slot is a typed bank of module ports. SubItemsGuid has one entry per
// port; unused entries are unset.
type Slot struct {
	NodeType      string          `json:"$type"`
	SlotCapacity  int             `json:"SlotCapacity"`
	SlotType      int             `json:"SlotType"`
	InitialPort   int             `json:"InitialPort"`
	IO            int             `json:"IO"`
	UnitComposers []*UnitComposer `json:"UnitComposers"`
	SubItemsGuid  []Ref           `json:"SubItemsGuid"`
	Name          string          `json:"Name"`
}

// Unit is a numeric addressable point of the controller.
type Unit struct {
	NodeType  string `json:"$type"`
	Id        int    `json:"Id"`
	Event     int    `json:"Event"`
	Scene     int    `json:"Scene"`
	Disabled  bool   `json:"Disabled"`
	Logged    bool   `json:"Logged"`
	Memo      bool   `json:"Memo"`
	Increment bool   `json:"Increment"`
}

// UnitComposer binds a unit to a device port.
type UnitComposer struct {
	NodeType        string `json:"$type"`
	Name            string `json:"Name"`
	Unit            *Unit  `json:"Unit"`
	PortNumber      int    `json:"PortNumber"`
	PortType        int    `json:"PortType"`
	NotProgrammable bool   `json:"NotProgrammable"`
	Kind            int    `json:"Kind"`
	IO              int    `json:"IO"`
	Value           int    `json:"Value"`
}

// Keypad is a wall keypad user interface.
type Keypad struct {
	NodeType                 string          `json:"$type"`
	DriverGuid               uuid.UUID       `json:"DriverGuid"`
	ModuleInterface          bool            `json:"ModuleInterface"`
	Keypad4x4                bool            `json:"Keypad4x4"`
	HsnetAddress             int             `json:"HsnetAddress"`
	TipoEntrada1ChaveLD      int             `json:"TipoEntrada1ChaveLD"`
	TipoEntrada2ChaveLD      int             `json:"TipoEntrada2ChaveLD"`
	UnitEntradaDigital1      *UnitComposer   `json:"UnitEntradaDigital1"`
	UnitEntradaDigital2      *UnitComposer   `json:"UnitEntradaDigital2"`
	UnitAnyKey               *UnitComposer   `json:"UnitAnyKey"`
	BrightUnit               int             `json:"BrightUnit"`
	UnitBrightnessColor1     *UnitComposer   `json:"UnitBrightnessColor1"`
	UnitBrightnessColor2     *UnitComposer   `json:"UnitBrightnessColor2"`
	UnitBeepProfile          *UnitComposer   `json:"UnitBeepProfile"`
	UnitVolumeProfile        *UnitComposer   `json:"UnitVolumeProfile"`
	UnitVolumeKey            *UnitComposer   `json:"UnitVolumeKey"`
	UnitBlockedKeypad        *UnitComposer   `json:"UnitBlockedKeypad"`
	UnitPIN32                *UnitComposer   `json:"UnitPIN32"`
	NightModeGroup           int             `json:"NightModeGroup"`
	LightSensorMode          int             `json:"LightSensorMode"`
	LightSensorMasterID      int             `json:"LightSensorMasterID"`
	DevID                    int             `json:"DevID"`
	ListKeypadButtons        []*KeypadButton `json:"ListKeypadButtons"`
	ListKeypadButtonsLayout2 []*KeypadButton `json:"ListKeypadButtonsLayout2"`
	ProfileGuid              uuid.UUID       `json:"ProfileGuid"`
	ButtonCountLayout2       int             `json:"ButtonCountLayout2"`
	ButtonLayout2            int             `json:"ButtonLayout2"`
	Slots                    []*Slot         `json:"Slots"`
	Hold                     int             `json:"hold"`
	ButtonLayout1            int             `json:"ButtonLayout1"`
	ModelName                string          `json:"ModelName"`
	Color                    string          `json:"Color"`
	ButtonColor              string          `json:"ButtonColor"`
	Name                     string          `json:"Name"`
	Notes                    *string         `json:"Notes"`
	Guid                     uuid.UUID       `json:"Guid"`
	ButtonCount              int             `json:"ButtonCount"`
}

// composers lists the keypad-level composers in document order.
func (k *Keypad) composers() []*UnitComposer {
	return []*UnitComposer{
		k.UnitEntradaDigital1, k.UnitEntradaDigital2, k.UnitAnyKey,
		k.UnitBrightnessColor1, k.UnitBrightnessColor2, k.UnitBeepProfile,
		k.UnitVolumeProfile, k.UnitVolumeKey, k.UnitBlockedKeypad, k.UnitPIN32,
	}
}

// KeypadButton is one rocker keypad button.
type KeypadButton struct {
	NodeType                    string           `json:"$type"`
	StylePropertiesSerializable *StyleProperties `json:"StylePropertiesSerializable"`
	DoublePressDelay            bool             `json:"DoublePressDelay"`
	TargetDoubleObjectGuid      Ref              `json:"TargetDoubleObjectGuid"`
	ModoDoublePress             int              `json:"ModoDoublePress"`
	CommandDoublePress          int              `json:"CommandDoublePress"`
	PortNumberDoublePress       int              `json:"PortNumberDoublePress"`
	CanHold                     bool             `json:"CanHold"`
	Guid                        uuid.UUID        `json:"Guid"`
	TargetObjectGuid            Ref              `json:"TargetObjectGuid"`
	Modo                        int              `json:"Modo"`
	CommandOn                   int              `json:"CommandOn"`
	CommandOff                  int              `json:"CommandOff"`
	PortNumber                  int              `json:"PortNumber"`
	UnitControleLed             int              `json:"UnitControleLed"`
	LedColor                    int              `json:"LedColor"`
	Vincled                     bool             `json:"Vincled"`
	TimeFeedBack                int              `json:"TimeFeedBack"`
	UnitKey                     *UnitComposer    `json:"UnitKey"`
	UnitLed                     *UnitComposer    `json:"UnitLed"`
	UnitSecondaryKey            *UnitComposer    `json:"UnitSecondaryKey"`
	UnitSecondaryLed            *UnitComposer    `json:"UnitSecondaryLed"`
	ButtonStyleGuid             uuid.UUID        `json:"ButtonStyleGuid"`
	EngraverText                *string          `json:"EngraverText"`
	Automode                    bool             `json:"Automode"`
}

// StyleProperties carries the icon choices of a styled button.
type StyleProperties struct {
	NodeType   string     `json:"$type"`
	Icon       *uuid.UUID `json:"STYLE_PROP_ICON"`
	RockerIcon *uuid.UUID `json:"STYLE_PROP_ROCKER_ICON,omitempty"`
}

// Scene is a stored set of actions. Operator selects how the controller
// combines the actions: 0 standard, 1 movers.
type Scene struct {
	NodeType    string         `json:"$type"`
	Guid        uuid.UUID      `json:"Guid"`
	Name        string         `json:"Name"`
	SceneMovers bool           `json:"SceneMovers"`
	Operator    int            `json:"Operator"`
	Actions     []*SceneAction `json:"Actions"`
}

// Scene action types.
const (
	ActionTypeCircuit = 0
	ActionTypeGroup   = 7
)

// SceneAction targets a single load or, for group actions, a room.
type SceneAction struct {
	NodeType      string          `json:"$type"`
	TargetGuid    Ref             `json:"TargetGuid"`
	ActionType    int             `json:"ActionType"`
	Level         int             `json:"Level"`
	CustomActions []*CustomAction `json:"CustomActions"`
}

// CustomAction is the per-load entry of a group action.
type CustomAction struct {
	NodeType   string `json:"$type"`
	TargetGuid Ref    `json:"TargetGuid"`
	Enable     bool   `json:"Enable"`
	Level      int    `json:"Level"`
}

// SpecialAction is a built-in project, area or room action.
type SpecialAction struct {
	NodeType string    `json:"$type"`
	Name     string    `json:"Name"`
	Guid     uuid.UUID `json:"Guid"`
	Type     int       `json:"Type"`
}

// Variable is a controller variable.
type Variable struct {
	NodeType       string    `json:"$type"`
	Name           string    `json:"Name"`
	Description    string    `json:"Description"`
	Guid           uuid.UUID `json:"Guid"`
	Configurable   bool      `json:"Configurable"`
	Memorizable    bool      `json:"Memorizable"`
	IsStartup      bool      `json:"IsStartup"`
	AllowsModify   bool      `json:"AllowsModify"`
	VariableType   int       `json:"VariableType"`
	NumericSubType int       `json:"NumericSubType"`
	InitialValue   int       `json:"InitialValue"`
	Id             int       `json:"Id"`
}

type ClientInfo struct {
	NodeType string `json:"$type"`
	Name     string `json:"Name"`
	Email    string `json:"Email"`
	Phone    string `json:"Phone"`
}

type ProgrammerInfo struct {
	NodeType string    `json:"$type"`
	Name     string    `json:"Name"`
	Email    string    `json:"Email"`
	Guid     uuid.UUID `json:"Guid"`
}

type CloudConfig struct {
	NodeType           string  `json:"$type"`
	CloudHomesystemsId int     `json:"CloudHomesystemsId"`
	CloudSerialNumber  int     `json:"CloudSerialNumber"`
	RemoteAcess        bool    `json:"RemoteAcess"`
	CloudConfiguration *string `json:"CloudConfiguration"`
	CloudLocalName     *string `json:"CloudLocalName"`
	CloudPassword      *string `json:"CloudPassword"`
}
