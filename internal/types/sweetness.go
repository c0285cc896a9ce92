// sweetness.go
//
// Dual-store data sync service for TeaCal (轻茶纪), a milk-tea calorie tracker
// Copyright (c) 2026 TeaCal Project Contributors
//
// This file is part of teacal-sync.
// teacal-sync is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// teacal-sync is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with teacal-sync.
// If not, see <https://www.gnu.org/licenses/>.

package types

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// SweetnessLevel is the canonical sugar percentage of a drink, 0-100.
// Clients historically sent either the number or a Chinese menu label
// (无糖, 半糖, 全糖, ...), so it unmarshals from both. The integer is the
// only representation that ever reaches a store; labels are formatting.
type SweetnessLevel int

const DefaultSweetness SweetnessLevel = 50 // 半糖

var sweetnessLabels = map[string]SweetnessLevel{
	"无糖":  0,
	"少糖":  30,
	"三分糖": 30,
	"半糖":  50,
	"五分糖": 50,
	"七分糖": 70,
	"全糖":  100,
}

// ParseSweetness maps a menu label to its percentage. Unknown labels map
// to DefaultSweetness, matching how the original client behaved.
func ParseSweetness(label string) SweetnessLevel {
	if v, ok := sweetnessLabels[label]; ok {
		return v
	}
	if n, err := strconv.Atoi(label); err == nil {
		return clampSweetness(n)
	}
	return DefaultSweetness
}

// Label renders the nearest menu label for presentation.
func (s SweetnessLevel) Label() string {
	switch {
	case s <= 0:
		return "无糖"
	case s <= 30:
		return "少糖"
	case s <= 50:
		return "半糖"
	case s <= 70:
		return "七分糖"
	default:
		return "全糖"
	}
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (s *SweetnessLevel) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*s = DefaultSweetness
		return nil
	}

	// Try a number first
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*s = clampSweetness(n)
		return nil
	}

	// Then a label string
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		*s = ParseSweetness(label)
		return nil
	}

	return fmt.Errorf("SweetnessLevel: unexpected type, expected number or label")
}

// MarshalJSON implements the json.Marshaler interface.
func (s SweetnessLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(s))
}

// Int converts SweetnessLevel back to int.
func (s SweetnessLevel) Int() int {
	return int(s)
}

func clampSweetness(n int) SweetnessLevel {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return SweetnessLevel(n)
}
