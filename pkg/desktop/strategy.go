package desktop

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/doorhinge/wallscenes/util/log"
	"golang.org/x/mod/semver"
)

// Strategy names a propagation technique.
type Strategy string

const (
	StrategyAuto       Strategy = "auto"
	StrategyDatastore  Strategy = "datastore"
	StrategyPrivateAPI Strategy = "private_api"
	StrategyAutomation Strategy = "automation"
	StrategyNone       Strategy = "none"
)

// Strategies lists the selectable strategies in preference order.
var Strategies = []Strategy{StrategyAuto, StrategyDatastore, StrategyPrivateAPI, StrategyAutomation, StrategyNone}

// privateAPIMinVersion is the first macOS release where the desktop picture
// database is no longer read by the Dock.
const privateAPIMinVersion = "v14"

// ParseStrategy converts a stored preference value. Unknown values map to auto.
func ParseStrategy(s string) Strategy {
	for _, known := range Strategies {
		if string(known) == s {
			return known
		}
	}
	if s != "" {
		log.Printf("Desktop: unknown propagation strategy %q, using auto", s)
	}
	return StrategyAuto
}

// Resolve turns auto into the concrete strategy for the running system.
func Resolve(s Strategy) Strategy {
	if s != StrategyAuto {
		return s
	}
	version, err := osVersion()
	if err != nil {
		log.Printf("Desktop: could not read OS version: %v", err)
	}
	return resolveStrategy(s, runtime.GOOS, version)
}

func resolveStrategy(s Strategy, goos, version string) Strategy {
	if s != StrategyAuto {
		return s
	}
	if goos != "darwin" {
		return StrategyNone
	}

	v := "v" + strings.TrimSpace(version)
	if !semver.IsValid(v) {
		log.Printf("Desktop: unrecognized macOS version %q, assuming a recent release", version)
		return StrategyPrivateAPI
	}
	if semver.Compare(v, privateAPIMinVersion) < 0 {
		return StrategyDatastore
	}
	return StrategyPrivateAPI
}

// Options carries the collaborators of the propagators.
type Options struct {
	Setter          Setter
	Runner          CommandRunner
	DatastorePath   string        // Empty selects the Dock's database
	AutomationDelay time.Duration // Zero selects DefaultAutomationDelay
}

// NewPropagator builds the propagator for s, resolving auto first.
func NewPropagator(s Strategy, opts Options) (Propagator, error) {
	if opts.Runner == nil {
		opts.Runner = DefaultRunner
	}
	if opts.Setter == nil {
		opts.Setter = NewSetter(opts.Runner)
	}

	resolved := Resolve(s)
	log.Debugf("Desktop: strategy %s resolved to %s", s, resolved)

	switch resolved {
	case StrategyDatastore:
		path := opts.DatastorePath
		if path == "" {
			var err error
			if path, err = DefaultDatastorePath(); err != nil {
				return nil, err
			}
		}
		return NewDatastorePropagator(path, opts.Runner), nil
	case StrategyPrivateAPI:
		api, err := newSpaceAPI()
		if err != nil {
			return nil, fmt.Errorf("private API unavailable: %w", err)
		}
		return &privateAPIPropagator{api: api}, nil
	case StrategyAutomation:
		return NewAutomationPropagator(opts.Runner, opts.Setter, opts.AutomationDelay), nil
	case StrategyNone:
		return &nonePropagator{setter: opts.Setter}, nil
	default:
		return nil, fmt.Errorf("unknown propagation strategy %q", s)
	}
}
