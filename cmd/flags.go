package cmd

import (
	"fmt"
	"strconv"
)

// optionalInt implements pflag.Value for an int that stays nil until set.
type optionalInt struct {
	target **int
}

func (f optionalInt) String() string {
	if *f.target == nil {
		return ""
	}
	return strconv.Itoa(**f.target)
}

func (f optionalInt) Set(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid value %q: must be an integer", s)
	}
	if v < 0 {
		return fmt.Errorf("invalid value %d: must not be negative", v)
	}
	*f.target = &v
	return nil
}

func (f optionalInt) Type() string {
	return "int"
}

// optionalBool implements pflag.Value for a tri-state bool flag:
// nil = use the config file, true = force on, false = force off.
type optionalBool struct {
	target **bool
}

func (f optionalBool) String() string {
	if *f.target == nil {
		return "config"
	}
	return strconv.FormatBool(**f.target)
}

func (f optionalBool) Set(s string) error {
	switch s {
	case "true", "1", "yes":
		v := true
		*f.target = &v
	case "false", "0", "no":
		v := false
		*f.target = &v
	case "config":
		*f.target = nil
	default:
		return fmt.Errorf("invalid value %q: use true, false, or config", s)
	}
	return nil
}

func (f optionalBool) Type() string {
	return "bool"
}

func (f optionalBool) IsBoolFlag() bool {
	return true
}
