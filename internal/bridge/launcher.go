// Package bridge covers the two ways funds move across chains in crossdesk:
// the external bridging widget opened in a pop-up (fire-and-forget, no return
// channel) and the bridge aggregator API used by the deposit flow.
package bridge

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"github.com/joshnichols-lang/crossdesk/internal/domain"
)

// Pop-up geometry for the bridging widget window.
const (
	PopupName   = "crossdesk-bridge"
	PopupWidth  = 480
	PopupHeight = 720
)

// Popup is a handle to an opened widget window.
type Popup interface {
	// ClosedState reports whether the window is closed and whether that
	// state is even readable. Some browsers leave the closed property
	// undefined on blocked windows, so "unknown" is a distinct signal.
	ClosedState() (closed bool, known bool)
}

// WindowOpener opens a named pop-up window. The browser-facing layer supplies
// the real implementation; tests supply fakes.
type WindowOpener interface {
	Open(url, name string, width, height int) Popup
}

// Launcher builds widget URLs and opens the bridging pop-up. It never tracks
// bridge completion - there is no callback at the protocol level; the balance
// pollers pick up bridged funds and the user retries the gated action.
type Launcher struct {
	host               string
	destinationChainID int
}

// NewLauncher creates a Launcher for the given widget host (scheme and
// authority, no trailing slash) and fixed destination chain.
func NewLauncher(host string, destinationChainID int) *Launcher {
	return &Launcher{
		host:               host,
		destinationChainID: destinationChainID,
	}
}

// URL builds the widget URL with the destination address percent-encoded and
// the fixed destination-chain parameter.
func (l *Launcher) URL(destinationAddress string) (string, error) {
	if !common.IsHexAddress(destinationAddress) {
		return "", fmt.Errorf("bridge: invalid destination address %q", destinationAddress)
	}

	params := url.Values{}
	params.Set("destinationAddress", destinationAddress)
	params.Set("destinationChainId", strconv.Itoa(l.destinationChainID))

	return l.host + "/swap?" + params.Encode(), nil
}

// Open builds the widget URL and opens it through the given opener. A nil
// handle, an already-closed window, and an unreadable closed state are all
// treated as the pop-up being blocked; callers surface the remediation
// message from domain.ErrPopupBlocked rather than failing silently.
func (l *Launcher) Open(opener WindowOpener, destinationAddress string) (Popup, error) {
	widgetURL, err := l.URL(destinationAddress)
	if err != nil {
		return nil, err
	}

	popup := opener.Open(widgetURL, PopupName, PopupWidth, PopupHeight)
	if popup == nil {
		return nil, fmt.Errorf("bridge: %w", domain.ErrPopupBlocked)
	}
	closed, known := popup.ClosedState()
	if closed || !known {
		return nil, fmt.Errorf("bridge: %w", domain.ErrPopupBlocked)
	}

	return popup, nil
}
