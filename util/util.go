package util

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	SecondsInADay int64 = 24 * 60 * 60
)

func GetUUID() string {
	return uuid.New().String()
}

// StringValueIn Checks whether the value exist in list of strings.
func StringValueIn(value string, list []string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

// SplitCSVParam splits a comma separated request param into trimmed,
// non-empty values.
func SplitCSVParam(param string) []string {
	if param == "" {
		return nil
	}
	values := make([]string, 0)
	for _, value := range strings.Split(param, ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			values = append(values, value)
		}
	}
	return values
}

func FloatRoundOffWithPrecision(value float64, precision int) (float64, error) {
	valueString := fmt.Sprintf("%0.*f", precision, value)
	roundOffValue, err := strconv.ParseFloat(valueString, 64)
	if err != nil {
		log.WithFields(log.Fields{"value": value,
			"precision": precision}).Error("error while rounding off float value")
		return roundOffValue, err
	}
	return roundOffValue, nil
}

// RoundTwoDecimals Rounds off to the 2 decimal places used on all report
// money and percent values. Falls back to the raw value on parse failure.
func RoundTwoDecimals(value float64) float64 {
	rounded, err := FloatRoundOffWithPrecision(value, 2)
	if err != nil {
		return value
	}
	return rounded
}
