package desktop

import (
	"context"
	"fmt"
	"strconv"

	"github.com/doorhinge/wallscenes/pkg/display"
	"github.com/doorhinge/wallscenes/util/log"
)

// mainDisplayIdentifier is the identifier the window server reports for the
// main display when it does not use a UUID.
const mainDisplayIdentifier = "Main"

// managedDisplay is one display entry of the window server's Space list.
type managedDisplay struct {
	Identifier string
	Spaces     []uint64
}

// spaceAPI is the window server surface used by privateAPIPropagator.
type spaceAPI interface {
	ManagedSpaces() ([]managedDisplay, error)
	SetDesktopImage(spaceID uint64, imagePath string) error
}

// privateAPIPropagator sets the picture of each Space directly through the
// window server.
type privateAPIPropagator struct {
	api spaceAPI
}

func (p *privateAPIPropagator) Name() string { return string(StrategyPrivateAPI) }

func (p *privateAPIPropagator) PropagateToAllSpaces(ctx context.Context, imagePath string, d display.Display) (Result, error) {
	displays, err := p.api.ManagedSpaces()
	if err != nil {
		return Result{}, fmt.Errorf("listing spaces: %w", err)
	}
	md, err := pickManagedDisplay(displays, d)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, spaceID := range md.Spaces {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := p.api.SetDesktopImage(spaceID, imagePath); err != nil {
			log.Printf("[Display %s] PrivateAPI: space %d: %v", d.ID, spaceID, err)
			res.Failures = append(res.Failures, SpaceFailure{Space: strconv.FormatUint(spaceID, 10), Err: err})
			continue
		}
		log.Debugf("[Display %s] PrivateAPI: space %d set", d.ID, spaceID)
		res.Spaces++
	}

	if res.Spaces == 0 {
		if len(res.Failures) > 0 {
			return res, fmt.Errorf("no space updated: %w", res.Failures[0].Err)
		}
		return res, fmt.Errorf("display %s has no spaces", d.ID)
	}
	return res, nil
}

// pickManagedDisplay matches a display to a window server entry. The main
// display may be reported as "Main"; other entries are matched by position.
func pickManagedDisplay(displays []managedDisplay, d display.Display) (managedDisplay, error) {
	if len(displays) == 0 {
		return managedDisplay{}, fmt.Errorf("window server reported no displays")
	}
	if len(displays) == 1 {
		return displays[0], nil
	}
	if d.Primary {
		for _, md := range displays {
			if md.Identifier == mainDisplayIdentifier {
				return md, nil
			}
		}
	}
	if d.Index >= 0 && d.Index < len(displays) {
		return displays[d.Index], nil
	}
	return managedDisplay{}, fmt.Errorf("no window server entry for display %s", d.ID)
}
