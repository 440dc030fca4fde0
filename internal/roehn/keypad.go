package roehn

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-designer/internal/design"
)

// ButtonPorts returns the primary and secondary port of a button ordinal.
func ButtonPorts(ordinal int) (primary, secondary int) {
	i := (ordinal - 1) % len(primaryPorts)
	if i < 0 {
		i = 0
	}
	return primaryPorts[i], secondaryPorts[i]
}

// ButtonStyle resolves the style GUID and style properties of a button.
// Icon names outside the catalogue count as no icon.
//
//	rocker and icon: rocker+icon style
//	rocker only:     rocker style with the orientation icon
//	icon only:       icon style
//	neither:         unset style, no properties
func ButtonStyle(iconName string, rocker bool, orientation design.RockerStyle) (uuid.UUID, *StyleProperties) {
	var iconID *uuid.UUID
	if g, ok := Icons[strings.ToLower(strings.TrimSpace(iconName))]; ok {
		iconID = &g
	}
	rockerIcon := RockerIcon(orientation)

	switch {
	case rocker && iconID != nil:
		return StyleRockerIcon, &StyleProperties{NodeType: TypeStyleProps, Icon: iconID, RockerIcon: &rockerIcon}
	case rocker:
		return StyleRocker, &StyleProperties{NodeType: TypeStyleProps, RockerIcon: &rockerIcon}
	case iconID != nil:
		return StyleIcon, &StyleProperties{NodeType: TypeStyleProps, Icon: iconID}
	default:
		return uuid.Nil, nil
	}
}

func (c *compiler) keypad(k design.Keypad) (*Keypad, error) {
	if !design.ValidButtonCount(k.ButtonCount) {
		return nil, fmt.Errorf("%w: keypad %q has %d buttons", design.ErrInvalid, k.Name, k.ButtonCount)
	}

	s := c.s
	composers := s.composers(keypadComposers)
	model := defaultText(k.Model, design.DefaultKeypadModel)
	device := k.DeviceID
	if device == 0 {
		device = k.NetworkAddress
	}

	node := &Keypad{
		NodeType:                 TypeKeypad,
		DriverGuid:               DriverKeypad,
		HsnetAddress:             k.NetworkAddress,
		UnitEntradaDigital1:      composers[0],
		UnitEntradaDigital2:      composers[1],
		UnitAnyKey:               composers[2],
		UnitBrightnessColor1:     composers[3],
		UnitBrightnessColor2:     composers[4],
		UnitBeepProfile:          composers[5],
		UnitVolumeProfile:        composers[6],
		UnitVolumeKey:            composers[7],
		UnitBlockedKeypad:        composers[8],
		UnitPIN32:                composers[9],
		DevID:                    device,
		ListKeypadButtons:        []*KeypadButton{},
		ListKeypadButtonsLayout2: []*KeypadButton{},
		ProfileGuid:              ProfileKeypad,
		Slots:                    []*Slot{},
		ButtonLayout1:            keypadLayouts[k.ButtonCount],
		ModelName:                model,
		Color:                    strings.ToUpper(defaultText(k.Color, design.DefaultKeypadColor)),
		ButtonColor:              strings.ToUpper(defaultText(k.ButtonColor, design.DefaultKeypadColor)),
		Name:                     defaultText(k.Name, model),
		Notes:                    optionalText(k.Notes),
		Guid:                     s.GUID(EntityKeypad, k.ID),
		ButtonCount:              k.ButtonCount,
	}

	buttons := append([]design.KeypadButton(nil), k.Buttons...)
	sort.SliceStable(buttons, func(i, j int) bool { return buttons[i].Ordinal < buttons[j].Ordinal })
	for _, b := range buttons {
		if b.Ordinal < 1 || b.Ordinal > k.ButtonCount {
			c.log.Warn("keypad button beyond button count", "keypad_id", k.ID, "ordinal", b.Ordinal)
			continue
		}
		node.ListKeypadButtons = append(node.ListKeypadButtons, c.button(b))
	}
	return node, nil
}

func (c *compiler) button(b design.KeypadButton) *KeypadButton {
	s := c.s
	target := c.buttonTarget(b)
	style, props := ButtonStyle(b.Icon, b.Rocker, b.RockerStyle)
	primary, secondary := ButtonPorts(b.Ordinal)

	// A stored mode wins; zero picks toggle for bound keys.
	mode, commandOn := b.Mode, b.CommandOn
	if target.IsSet() {
		if mode == 0 {
			mode = modeToggle
		}
		if commandOn == 0 {
			commandOn = 1
		}
	} else if mode == 0 {
		mode = modeUnassigned
	}
	doubleMode := b.DoublePressMode
	if doubleMode == 0 {
		doubleMode = modeUnassigned
	}
	g := b.GUID
	if g == uuid.Nil {
		g = s.newGUID()
	}

	return &KeypadButton{
		NodeType:                    TypeKeypadButton,
		StylePropertiesSerializable: props,
		ModoDoublePress:             doubleMode,
		CommandDoublePress:          b.DoublePressCommand,
		CanHold:                     b.CanHold,
		Guid:                        g,
		TargetObjectGuid:            target,
		Modo:                        mode,
		CommandOn:                   commandOn,
		CommandOff:                  b.CommandOff,
		UnitKey:                     s.composer(composerSpec{name: "UnitKey", port: primary, portType: portTypeKey}),
		UnitLed:                     s.composer(composerSpec{name: "UnitLed", port: primary, portType: portTypeLed, kind: 1, io: 1}),
		UnitSecondaryKey:            s.composer(composerSpec{name: "UnitSecondaryKey", port: secondary, portType: portTypeKey}),
		UnitSecondaryLed:            s.composer(composerSpec{name: "UnitSecondaryLed", port: secondary, portType: portTypeLed, kind: 1, io: 1}),
		ButtonStyleGuid:             style,
		EngraverText:                optionalText(b.Engraving),
		Automode:                    true,
	}
}

// buttonTarget resolves what a button drives: its scene, else its circuit,
// else nothing.
func (c *compiler) buttonTarget(b design.KeypadButton) Ref {
	if b.SceneID != nil {
		if _, ok := c.g.Scene(*b.SceneID); ok {
			return RefTo(c.s.GUID(EntityScene, *b.SceneID))
		}
		c.log.Warn("button scene not in graph", "button_id", b.ID, "scene_id", *b.SceneID)
	}
	if b.CircuitID != nil {
		if circuit, ok := c.g.Circuit(*b.CircuitID); ok && circuit.Kind.Valid() {
			return RefTo(c.s.GUID(EntityCircuit, circuit.ID))
		}
		c.log.Warn("button circuit not in graph", "button_id", b.ID, "circuit_id", *b.CircuitID)
	}
	return Ref{}
}

func defaultText(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
