// Copyright 2025 The DBQ Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package memtable

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/DataBridgeTech/ddqcore"
)

// Named conversion predicates backing NotConvertiblePredicate. Each takes a
// non-null value and reports whether it converts to the target type.

func converterFor(p ddqcore.NotConvertiblePredicate) (func(any) bool, error) {
	switch p.Target {
	case ddqcore.ConvertInt:
		return convertibleToInt, nil
	case ddqcore.ConvertLong:
		return convertibleToLong, nil
	case ddqcore.ConvertDouble:
		return convertibleToDouble, nil
	case ddqcore.ConvertDate:
		if p.DateLayout == "" {
			return nil, fmt.Errorf("date conversion requires a layout")
		}
		layout := p.DateLayout
		return func(v any) bool {
			return convertibleToDate(v, layout)
		}, nil
	case ddqcore.ConvertBoolean:
		format := p.Boolean
		return func(v any) bool {
			return convertibleToBoolean(v, format)
		}, nil
	default:
		return nil, fmt.Errorf("unsupported conversion target %q", p.Target)
	}
}

func convertibleToInt(v any) bool {
	switch t := v.(type) {
	case int:
		return t >= math.MinInt32 && t <= math.MaxInt32
	case int32:
		return true
	case int64:
		return t >= math.MinInt32 && t <= math.MaxInt32
	case string:
		_, err := strconv.ParseInt(strings.TrimSpace(t), 10, 32)
		return err == nil
	default:
		return false
	}
}

func convertibleToLong(v any) bool {
	switch t := v.(type) {
	case int, int32, int64:
		return true
	case string:
		_, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return err == nil
	default:
		return false
	}
}

func convertibleToDouble(v any) bool {
	switch t := v.(type) {
	case int, int32, int64, float32, float64:
		return true
	case string:
		_, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return err == nil
	default:
		return false
	}
}

func convertibleToDate(v any, layout string) bool {
	switch t := v.(type) {
	case time.Time:
		return true
	case string:
		_, err := time.Parse(layout, t)
		return err == nil
	default:
		return false
	}
}

func convertibleToBoolean(v any, format ddqcore.BooleanFormat) bool {
	trueValue, falseValue := format.TrueValue, format.FalseValue
	if trueValue == "" {
		trueValue = "true"
	}
	if falseValue == "" {
		falseValue = "false"
	}

	s, ok := v.(string)
	if !ok {
		_, ok := v.(bool)
		return ok
	}
	if format.CaseSensitive {
		return s == trueValue || s == falseValue
	}
	return strings.EqualFold(s, trueValue) || strings.EqualFold(s, falseValue)
}

// formatValue normalizes a value for grouping keys and set membership, so
// numerically equal values of different Go widths compare equal.
func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.FormatInt(int64(t), 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 64)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func numericValue(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	default:
		return 0, false
	}
}
