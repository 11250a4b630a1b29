// Package cliflags implements a koanf.Provider that takes a
// cli.Context and provides its flags to koanf.
package cliflags

import (
	"errors"
	"fmt"

	"github.com/knadh/koanf/maps"
	"github.com/urfave/cli/v2"
)

// CLIFlags implements a raw map[string]any provider.
type CLIFlags struct {
	mp map[string]any
}

// Provider returns a koanf provider over the flags set on a cli
// context. If a delim is provided, keys returned by cb may be nested
// and the map is unflattened by delim.
func Provider(ctx *cli.Context, delim string, cb func(string) string) *CLIFlags {
	// visible flags of the root app and the active command
	appFlags := ctx.App.VisibleFlags()
	commandFlags := ctx.Command.VisibleFlags()

	flags := map[string]cli.Flag{}
	for _, flag := range appFlags {
		flags[flag.Names()[0]] = flag
	}
	for _, flag := range commandFlags {
		flags[flag.Names()[0]] = flag
	}

	mp := make(map[string]any)

	for _, flagName := range ctx.FlagNames() {
		flag, ok := flags[flagName]
		if !ok {
			continue
		}

		value, err := getFlagValue(ctx, flag)
		if err != nil {
			continue
		}

		mapName := flagName
		if cb != nil {
			mapName = cb(flagName)
		}
		mp[mapName] = value
	}

	if delim != "" {
		mp = maps.Unflatten(mp, delim)
	}

	return &CLIFlags{mp: mp}
}

// ReadBytes is not supported by the cliflags provider.
func (e *CLIFlags) ReadBytes() ([]byte, error) {
	return nil, errors.New("cli provider does not support this method")
}

// Read returns the loaded map[string]any.
func (e *CLIFlags) Read() (map[string]any, error) {
	return e.mp, nil
}

func getFlagValue(ctx *cli.Context, flag cli.Flag) (any, error) {
	name := flag.Names()[0]

	switch f := flag.(type) {
	case *cli.StringFlag:
		return ctx.String(name), nil
	case *cli.StringSliceFlag:
		return ctx.StringSlice(name), nil
	case *cli.PathFlag:
		return ctx.Path(name), nil
	case *cli.IntFlag:
		return ctx.Int(name), nil
	case *cli.IntSliceFlag:
		return ctx.IntSlice(name), nil
	case *cli.Int64Flag:
		return ctx.Int64(name), nil
	case *cli.BoolFlag:
		return ctx.Bool(name), nil
	case *cli.Float64Flag:
		return ctx.Float64(name), nil
	case *cli.DurationFlag:
		return f.Value, nil
	}

	return nil, fmt.Errorf("unsupported flag type %T", flag)
}
