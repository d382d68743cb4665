// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Enhancement mode table

package config

import (
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/sony-level/scenepack/internal/errors"
)

// EnhancementOption is one selectable texture enhancement mode
type EnhancementOption struct {
	Mode        string
	Model       string
	Factor      int
	ModelName   string // ncnn model, loaded as <name>.param and <name>.bin
	Description string
}

var enhancementOptions = map[string]EnhancementOption{
	"0": {
		Mode:        "0",
		Model:       "x0",
		Factor:      0,
		Description: "Default mode, original textures are used",
	},
	"2": {
		Mode:        "2",
		Model:       "x2",
		Factor:      2,
		ModelName:   "RealESRGAN_x2plus",
		Description: "Doubles the resolution of every texture",
	},
	"4": {
		Mode:        "4",
		Model:       "x4",
		Factor:      4,
		ModelName:   "RealESRGAN_x4plus",
		Description: "Quadruples the resolution of every texture",
	},
}

var modeAliases = map[string]string{
	"off": "0",
	"x0":  "0",
	"2x":  "2",
	"x2":  "2",
	"4x":  "4",
	"x4":  "4",
}

// LookupEnhancement resolves a mode selector ("0", "2", "4", "off", "2x", ...)
func LookupEnhancement(mode string) (EnhancementOption, error) {
	key := strings.ToLower(strings.TrimSpace(mode))
	if alias, ok := modeAliases[key]; ok {
		key = alias
	}
	opt, ok := enhancementOptions[key]
	if !ok {
		return EnhancementOption{}, apperrors.NewConfig(fmt.Sprintf("invalid enhancement mode %q (valid: %s)", mode, strings.Join(EnhancementModes(), ", ")))
	}
	return opt, nil
}

// EnhancementModes lists the canonical selectors
func EnhancementModes() []string {
	modes := make([]string, 0, len(enhancementOptions))
	for k := range enhancementOptions {
		modes = append(modes, k)
	}
	sort.Strings(modes)
	return modes
}
