package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/go-arbor/arbor/pkg/descriptor"
)

var reduceFile string

var reduceCmd = &cobra.Command{
	Use:   "reduce [compact string ...]",
	Short: "Reduce construction parameters to a canonical descriptor",
	Long: `Reduce runs the parameter reduction engine over its inputs and prints
the resulting descriptor as YAML.

Each positional argument is one compact-syntax parameter, e.g.

  arbor reduce 'item1:$span.row icon-star Hello'

With --file, the parameters are read from a YAML document holding a
list of parameter values (strings and mappings) instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := collectParams(args)
		if err != nil {
			return err
		}
		d, err := descriptor.Reduce(params...)
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(dumpDescriptor(d))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	reduceCmd.Flags().StringVarP(&reduceFile, "file", "f", "", "YAML file holding a list of parameters")
	rootCmd.AddCommand(reduceCmd)
}

func collectParams(args []string) ([]any, error) {
	params := make([]any, 0, len(args))
	for _, a := range args {
		params = append(params, a)
	}
	if reduceFile == "" {
		return params, nil
	}
	data, err := os.ReadFile(reduceFile)
	if err != nil {
		return nil, err
	}
	var fromFile []any
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return nil, fmt.Errorf("parse %s: %w", reduceFile, err)
	}
	return append(params, fromFile...), nil
}

// descriptorDump is the YAML projection of a reduced descriptor. Function
// values (constructors, callbacks) cannot serialize, so callbacks print as
// registration counts per name.
type descriptorDump struct {
	TagName   string         `yaml:"tagName,omitempty"`
	Name      string         `yaml:"name,omitempty"`
	IDName    string         `yaml:"idName,omitempty"`
	ClassName string         `yaml:"className,omitempty"`
	Icon      string         `yaml:"icon,omitempty"`
	Label     string         `yaml:"label,omitempty"`
	Root      bool           `yaml:"root,omitempty"`
	Trace     bool           `yaml:"trace,omitempty"`
	Props     map[string]any `yaml:"props,omitempty"`
	Styles    map[string]any `yaml:"styles,omitempty"`
	OptParams map[string]any `yaml:"optParams,omitempty"`
	Callbacks map[string]int `yaml:"callbacks,omitempty"`
	Content   []string       `yaml:"content,omitempty"`
}

func dumpDescriptor(d *descriptor.Descriptor) *descriptorDump {
	dump := &descriptorDump{
		TagName:   d.TagName,
		Name:      d.Name,
		IDName:    d.IDName,
		ClassName: d.ClassName,
		Icon:      d.Icon,
		Label:     d.Label,
		Root:      d.Root,
		Trace:     d.Trace,
		Props:     scrubFuncs(d.Props),
		Styles:    scrubFuncs(d.Styles),
		OptParams: scrubFuncs(d.OptParams),
	}
	if len(d.Callbacks) > 0 {
		dump.Callbacks = make(map[string]int, len(d.Callbacks))
		for name, list := range d.Callbacks {
			dump.Callbacks[name] = len(list)
		}
	}
	for _, c := range d.Content {
		dump.Content = append(dump.Content, fmt.Sprintf("%v", c))
	}
	return dump
}

// scrubFuncs replaces unserializable values with a type placeholder.
func scrubFuncs(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch v.(type) {
		case string, bool, int, int64, float64, []any, map[string]any, nil:
			out[k] = v
		default:
			out[k] = fmt.Sprintf("<%T>", v)
		}
	}
	return out
}
