package roehn

import (
	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-designer/internal/design"
)

// Load profiles.
var (
	ProfileOnOff        = uuid.MustParse("10000000-0000-0000-0000-000000000001")
	ProfileDimmer       = uuid.MustParse("10000000-0000-0000-0000-000000000002")
	ProfileShade        = uuid.MustParse("20000000-0000-0000-0000-000000000001")
	ProfileHVAC         = uuid.MustParse("14000000-0000-0000-0000-000000000001")
	ControlModelHVAC    = uuid.MustParse("17000000-0000-0000-0000-000000000001")
	ProfileKeypad       = uuid.MustParse("40000000-0000-0000-0000-000000000001")
	DriverKeypad        = uuid.MustParse("90000000-0000-0000-0000-000000000004")
	StyleRocker         = uuid.MustParse("13000000-0000-0000-0000-000000000001")
	StyleIcon           = uuid.MustParse("13000000-0000-0000-0000-000000000002")
	StyleRockerIcon     = uuid.MustParse("13000000-0000-0000-0000-000000000003")
	RockerIconUpDown    = uuid.MustParse("11000000-0000-0000-0000-000000000001")
	RockerIconLeftRight = uuid.MustParse("11000000-0000-0000-0000-000000000002")
	RockerIconPrevNext  = uuid.MustParse("11000000-0000-0000-0000-000000000003")
)

// Load types of a CircuitLoad.
const (
	LoadTypeOnOff  = 0
	LoadTypeDimmer = 2
)

// Slot names.
const (
	SlotLoadOnOff = "Load ON/OFF"
	SlotLoadDim   = "Load Dim"
	SlotShade     = "Shade"
	SlotIR        = "IR"
	SlotPNET      = "PNET"
	SlotRoster    = "ACNET"
	SlotScene     = "Scene"
)

// Slot types.
const (
	slotTypeRoster = 0
	slotTypeOnOff  = 1
	slotTypeDim    = 2
	slotTypeIR     = 4
	slotTypePNET   = 6
	slotTypeShade  = 7
	slotTypeScene  = 8
)

// firstControllerUnit is the unit id of the controller's first composer.
const firstControllerUnit = 39

type slotSpec struct {
	name     string
	slotType int
	capacity int
	io       int
}

type composerSpec struct {
	name            string
	port            int
	portType        int
	kind            int
	io              int
	notProgrammable bool
}

// ModuleProfile describes how a module kind appears in the document.
type ModuleProfile struct {
	Kind   design.ModuleKind
	Driver uuid.UUID
	HVAC   bool
	slots  []slotSpec
}

// ChannelSlot returns the name of the slot whose ports are the module's channels.
func (p ModuleProfile) ChannelSlot() string {
	return p.slots[0].name
}

var (
	driverRL12 = uuid.MustParse("80000000-0000-0000-0000-000000000006")
	driverRL4  = uuid.MustParse("80000000-0000-0000-0000-000000000010")
	driverLX4  = uuid.MustParse("80000000-0000-0000-0000-000000000003")
	driverSA1  = uuid.MustParse("80000000-0000-0000-0000-000000000013")
	driverDIM8 = uuid.MustParse("80000000-0000-0000-0000-000000000001")
)

// Profile returns the document profile of a module kind.
func Profile(kind design.ModuleKind) ModuleProfile {
	switch kind {
	case design.ModuleRL12:
		return ModuleProfile{Kind: kind, Driver: driverRL12, slots: []slotSpec{
			{SlotLoadOnOff, slotTypeOnOff, 12, 1},
			{SlotPNET, slotTypePNET, 6, 1},
		}}
	case design.ModuleRL4:
		return ModuleProfile{Kind: kind, Driver: driverRL4, slots: []slotSpec{
			{SlotLoadOnOff, slotTypeOnOff, 4, 1},
		}}
	case design.ModuleLX4:
		return ModuleProfile{Kind: kind, Driver: driverLX4, slots: []slotSpec{
			{SlotShade, slotTypeShade, 4, 1},
			{SlotPNET, slotTypePNET, 6, 0},
		}}
	case design.ModuleSA1:
		return ModuleProfile{Kind: kind, Driver: driverSA1, HVAC: true, slots: []slotSpec{
			{SlotIR, slotTypeIR, 1, 1},
		}}
	case design.ModuleDIM8:
		return ModuleProfile{Kind: kind, Driver: driverDIM8, slots: []slotSpec{
			{SlotLoadDim, slotTypeDim, 8, 1},
			{SlotPNET, slotTypePNET, 6, 1},
		}}
	default:
		panic("roehn: unhandled module kind " + string(kind))
	}
}

// KindOfDriver maps a module driver GUID back to its kind.
func KindOfDriver(driver uuid.UUID) (design.ModuleKind, bool) {
	for _, k := range design.ModuleKinds {
		if Profile(k).Driver == driver {
			return k, true
		}
	}
	return "", false
}

// sa1Composers are the HVAC composers of an SA1 module.
var sa1Composers = []composerSpec{
	{"Power", 1, 600, 1, 1, false},
	{"Mode", 2, 600, 1, 1, false},
	{"Fan Speed", 4, 600, 1, 1, false},
	{"Swing", 5, 600, 1, 1, false},
	{"Temp Up", 11, 600, 1, 1, false},
	{"Temp Down", 12, 600, 1, 1, false},
	{"Display/Light", 3, 100, 0, 1, false},
}

// ControllerProfile describes a logic-server controller model.
type ControllerProfile struct {
	Model          string
	Driver         uuid.UUID
	RosterCapacity int
	SceneCapacity  int
}

// Controllers lists the supported logic-server models.
var Controllers = []ControllerProfile{
	{"AQL-GV-M4", uuid.MustParse("80000000-0000-0000-0000-000000000016"), 24, 96},
	{"ADP-M8", uuid.MustParse("80000000-0000-0000-0000-000000000018"), 250, 256},
	{"ADP-M16", uuid.MustParse("80000000-0000-0000-0000-000000000004"), 250, 256},
}

// Controller looks a controller model up by name.
func Controller(model string) (ControllerProfile, bool) {
	for _, c := range Controllers {
		if c.Model == model {
			return c, true
		}
	}
	return ControllerProfile{}, false
}

func isControllerDriver(driver uuid.UUID) bool {
	for _, c := range Controllers {
		if c.Driver == driver {
			return true
		}
	}
	return false
}

var controllerComposers = []composerSpec{
	{"Ativo", 1, 0, 0, 0, false},
	{"Modulos HSNET ativos", 1, 600, 1, 0, false},
	{"Modulos HSNET registrados", 2, 600, 1, 0, false},
	{"Data", 3, 600, 1, 1, true},
	{"Hora", 4, 600, 1, 1, true},
	{"DST", 2, 0, 0, 0, false},
	{"Nascer do Sol", 5, 600, 1, 1, true},
	{"Por do sol", 6, 600, 1, 1, true},
	{"Posição Solar", 7, 600, 1, 0, false},
	{"Flag RTC", 8, 600, 1, 0, false},
	{"Flag SNTP", 9, 600, 1, 0, false},
	{"Flag MYIP", 10, 600, 1, 0, false},
	{"Flag DDNS", 11, 600, 1, 0, false},
	{"Web IP", 1, 1100, 1, 0, false},
	{"Ultima inicializacao", 2, 1100, 1, 0, false},
	{"Tensao", 12, 600, 1, 0, false},
	{"Corrente", 13, 600, 1, 0, false},
	{"Power", 14, 600, 1, 0, false},
	{"Temperatura", 15, 600, 1, 0, false},
}

var keypadComposers = []composerSpec{
	{"UnitEntradaDigital1", 1, 0, 0, 0, false},
	{"UnitEntradaDigital2", 2, 0, 0, 0, false},
	{"UnitAnyKey", 3, 0, 0, 0, false},
	{"UnitBrightnessColor1", 1, 600, 1, 1, false},
	{"UnitBrightnessColor2", 2, 600, 1, 1, false},
	{"UnitBeepProfile", 3, 600, 1, 1, false},
	{"UnitVolumeProfile", 4, 600, 1, 1, false},
	{"UnitVolumeKey", 5, 0, 0, 0, false},
	{"UnitBlockedKeypad", 1, 100, 0, 1, false},
	{"UnitPIN32", 1, 1100, 1, 0, false},
}

// keypadLayouts maps a button count to the keypad's ButtonLayout1 value.
var keypadLayouts = map[int]int{1: 1, 2: 6, 4: 7}

var (
	primaryPorts   = [4]int{1, 2, 3, 4}
	secondaryPorts = [4]int{5, 6, 7, 8}
)

// Button port types.
const (
	portTypeKey = 300
	portTypeLed = 200
)

// Button modes.
const (
	modeToggle     = 2
	modeUnassigned = 3
)

var specialActions = []struct {
	name string
	kind int
}{
	{"All HVAC", 4},
	{"All Lights", 2},
	{"All Shades", 3},
	{"OFF", 0},
	{"Volume", 1},
}

// Icons maps keypad icon names to their document GUIDs.
var Icons = map[string]uuid.UUID{
	"abajour":            icon(26),
	"arandela":           icon(28),
	"bright":             icon(19),
	"cascata":            icon(54),
	"churrasco":          icon(57),
	"clean room":         icon(45),
	"concierge":          icon(46),
	"curtains":           icon(36),
	"curtains preset 1":  icon(38),
	"curtains preset 2":  icon(37),
	"day":                icon(13),
	"dim penumbra":       icon(21),
	"dinner":             icon(10),
	"do not disturb":     icon(44),
	"door":               icon(49),
	"doorbell":           icon(43),
	"fan":                icon(5),
	"fireplace":          icon(50),
	"garage":             icon(59),
	"gate":               icon(55),
	"good night":         icon(15),
	"gym1":               icon(63),
	"gym2":               icon(64),
	"gym3":               icon(65),
	"hvac":               icon(4),
	"irrigação":          icon(62),
	"jardim1":            icon(52),
	"jardim2":            icon(53),
	"lampada":            icon(30),
	"laundry":            icon(47),
	"leaving":            icon(16),
	"light preset 1":     icon(23),
	"light preset 2":     icon(24),
	"lower shades":       icon(32),
	"luminaria de piso":  icon(27),
	"medium":             icon(20),
	"meeting":            icon(66),
	"movie":              icon(8),
	"music":              icon(18),
	"night":              icon(14),
	"onoff":              icon(17),
	"padlock":            icon(48),
	"party":              icon(11),
	"pendant":            icon(25),
	"piscina 1":          icon(58),
	"piscina 2":          icon(61),
	"pizza":              icon(56),
	"raise shades":       icon(33),
	"reading":            icon(7),
	"shades":             icon(31),
	"shades preset 1":    icon(34),
	"shades preset 2":    icon(35),
	"spot":               icon(29),
	"steam room":         icon(67),
	"turned off":         icon(22),
	"tv":                 icon(40),
	"volume":             icon(41),
	"welcome":            icon(6),
	"wine":               icon(12),
}

func icon(n int) uuid.UUID {
	id := uuid.MustParse("11000000-0000-0000-0000-000000000000")
	// The last two decimal digits of the catalogue number are written as
	// the last two hex digits of the GUID text.
	id[15] = byte(n/10)<<4 | byte(n%10)
	return id
}

// IconName returns the catalogue name of an icon GUID.
func IconName(id uuid.UUID) (string, bool) {
	for name, g := range Icons {
		if g == id {
			return name, true
		}
	}
	return "", false
}

// RockerIcon returns the orientation icon of a rocker style.
func RockerIcon(style design.RockerStyle) uuid.UUID {
	switch style {
	case design.RockerLeftRight:
		return RockerIconLeftRight
	case design.RockerPreviousNext:
		return RockerIconPrevNext
	default:
		return RockerIconUpDown
	}
}

// RockerStyleOf maps an orientation icon back to its rocker style.
func RockerStyleOf(id uuid.UUID) design.RockerStyle {
	switch id {
	case RockerIconLeftRight:
		return design.RockerLeftRight
	case RockerIconPrevNext:
		return design.RockerPreviousNext
	default:
		return design.RockerUpDown
	}
}
