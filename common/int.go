package common

import (
	"fmt"
	"math"
)

// ConvertInt64ToInt32Safely returns a pointer to value as an int32, for SDK
// fields such as AllocatedStorage. Negative values and values above
// math.MaxInt32 are rejected.
func ConvertInt64ToInt32Safely(value int64) (*int32, error) {
	if value < 0 || value > math.MaxInt32 {
		return nil, fmt.Errorf("invalid value %d, must be between 0 and %d", value, math.MaxInt32)
	}
	int32Value := int32(value)
	return &int32Value, nil
}
