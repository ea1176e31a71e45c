package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	booleanFlagTypeName       = "bool"
	booleanFlagTrueLiteral    = "true"
	booleanFlagAcceptedValues = "true, false, yes, no, on, off, 1, 0"
	invalidBooleanValueFormat = "invalid boolean value %q for --%s; accepted values: %s"
	flagTerminator            = "--"
	longFlagPrefix            = "--"
)

var booleanFlagLiterals = map[string]bool{
	"true":  true,
	"t":     true,
	"1":     true,
	"yes":   true,
	"y":     true,
	"on":    true,
	"false": false,
	"f":     false,
	"0":     false,
	"no":    false,
	"n":     false,
	"off":   false,
}

func parseBooleanLiteral(input string) (bool, bool) {
	parsed, known := booleanFlagLiterals[strings.ToLower(strings.TrimSpace(input))]
	return parsed, known
}

// booleanFlagValue is a pflag.Value accepting the literals above. A bare
// flag means true.
type booleanFlagValue struct {
	target *bool
	name   string
}

func (value *booleanFlagValue) Set(input string) error {
	if strings.TrimSpace(input) == "" {
		input = booleanFlagTrueLiteral
	}
	parsed, known := parseBooleanLiteral(input)
	if !known {
		return fmt.Errorf(invalidBooleanValueFormat, input, value.name, booleanFlagAcceptedValues)
	}
	*value.target = parsed
	return nil
}

func (value *booleanFlagValue) String() string {
	if value == nil || value.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*value.target)
}

func (value *booleanFlagValue) Type() string {
	return booleanFlagTypeName
}

// registerBooleanFlag defines a boolean flag that also accepts a separate
// literal argument, as in "--summary no", once arguments are normalized.
func registerBooleanFlag(flagSet *pflag.FlagSet, target *bool, name string, defaultValue bool, usage string) {
	*target = defaultValue
	flagSet.Var(&booleanFlagValue{target: target, name: name}, name, usage)
	flag := flagSet.Lookup(name)
	flag.DefValue = strconv.FormatBool(defaultValue)
	flag.NoOptDefVal = booleanFlagTrueLiteral
}

// normalizeBooleanFlagArguments joins "--name literal" into "--name=literal"
// for every boolean flag defined anywhere in the command tree. Arguments
// after "--" are left untouched.
func normalizeBooleanFlagArguments(command *cobra.Command, arguments []string) []string {
	booleanFlags := map[string]struct{}{}
	collectBooleanFlagNames(command, booleanFlags)
	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		argument := arguments[index]
		if argument == flagTerminator {
			return append(normalized, arguments[index:]...)
		}
		if name, isLong := strings.CutPrefix(argument, longFlagPrefix); isLong && !strings.Contains(name, "=") && index+1 < len(arguments) {
			if _, isBoolean := booleanFlags[name]; isBoolean {
				next := arguments[index+1]
				if _, known := parseBooleanLiteral(next); known && !strings.HasPrefix(next, "-") {
					normalized = append(normalized, argument+"="+next)
					index++
					continue
				}
			}
		}
		normalized = append(normalized, argument)
	}
	return normalized
}

func collectBooleanFlagNames(command *cobra.Command, target map[string]struct{}) {
	collect := func(flag *pflag.Flag) {
		if flag.Value.Type() == booleanFlagTypeName {
			target[flag.Name] = struct{}{}
		}
	}
	command.PersistentFlags().VisitAll(collect)
	command.Flags().VisitAll(collect)
	for _, child := range command.Commands() {
		collectBooleanFlagNames(child, target)
	}
}
