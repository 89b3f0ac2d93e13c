package input

import (
	"fmt"
	"strings"
)

// Virtual-key codes for the key names accepted in workflow files. Names
// follow the original step vocabulary: single characters, f-keys and the
// common control keys.
var namedKeys = map[string]uint16{
	"backspace": 0x08,
	"tab":       0x09,
	"enter":     0x0D,
	"return":    0x0D,
	"shift":     0x10,
	"ctrl":      0x11,
	"alt":       0x12,
	"pause":     0x13,
	"capslock":  0x14,
	"esc":       0x1B,
	"escape":    0x1B,
	"space":     0x20,
	"pageup":    0x21,
	"pagedown":  0x22,
	"end":       0x23,
	"home":      0x24,
	"left":      0x25,
	"up":        0x26,
	"right":     0x27,
	"down":      0x28,
	"insert":    0x2D,
	"delete":    0x2E,
	"win":       0x5B,
	"f1":        0x70,
	"f2":        0x71,
	"f3":        0x72,
	"f4":        0x73,
	"f5":        0x74,
	"f6":        0x75,
	"f7":        0x76,
	"f8":        0x77,
	"f9":        0x78,
	"f10":       0x79,
	"f11":       0x7A,
	"f12":       0x7B,
}

// vkCode resolves a key name to its virtual-key code
func vkCode(key string) (uint16, error) {
	name := strings.ToLower(strings.TrimSpace(key))
	if vk, ok := namedKeys[name]; ok {
		return vk, nil
	}

	if len(name) == 1 {
		c := name[0]
		switch {
		case c >= 'a' && c <= 'z':
			return uint16(c - 'a' + 0x41), nil
		case c >= '0' && c <= '9':
			return uint16(c - '0' + 0x30), nil
		}
	}

	return 0, fmt.Errorf("unknown key %q", key)
}
