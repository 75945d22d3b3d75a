// Package ble wraps the Bluetooth adapter at the badge's interface
// boundary: start advertising, expose the adapter identity, and mirror
// the connection status. Pairing, bonding and GATT services live in the
// radio stack, not here.
package ble

import (
	"fmt"
	"log"
	"sync"

	"tinygo.org/x/bluetooth"
)

// Status mirrors the radio stack's connection state.
type Status int

const (
	Disconnected Status = iota
	Advertising
	Connected
)

func (s Status) String() string {
	switch s {
	case Advertising:
		return "advertising"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Manufacturer data company ID for the advertising payload. 0xFFFF is
// the Bluetooth SIG value reserved for internal use.
const companyID = 0xFFFF

// Advertiser owns the default adapter and keeps the last observed
// connection status.
type Advertiser struct {
	mu       sync.Mutex
	adapter  *bluetooth.Adapter
	name     string
	identity string
	status   Status
}

// NewAdvertiser enables the default adapter and registers the connect
// handler that tracks status changes.
func NewAdvertiser(name string) (*Advertiser, error) {
	adapter := bluetooth.DefaultAdapter
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("ble: enable adapter: %w", err)
	}

	a := &Advertiser{adapter: adapter, name: name}

	addr, err := adapter.Address()
	if err != nil {
		return nil, fmt.Errorf("ble: adapter address: %w", err)
	}
	a.identity = addr.MAC.String()

	adapter.SetConnectHandler(func(device bluetooth.Device, connected bool) {
		a.mu.Lock()
		if connected {
			a.status = Connected
		} else {
			// Advertising continues after a central disconnects.
			a.status = Advertising
		}
		a.mu.Unlock()
		log.Printf("ble: central %s connected=%v", device.Address.String(), connected)
	})

	return a, nil
}

// Start configures and starts advertising with the badge name and the
// identity payload in manufacturer data.
func (a *Advertiser) Start(payload []byte) error {
	adv := a.adapter.DefaultAdvertisement()
	err := adv.Configure(bluetooth.AdvertisementOptions{
		LocalName: a.name,
		ManufacturerData: []bluetooth.ManufacturerDataElement{
			{CompanyID: companyID, Data: payload},
		},
	})
	if err != nil {
		return fmt.Errorf("ble: configure advertisement: %w", err)
	}
	if err := adv.Start(); err != nil {
		return fmt.Errorf("ble: start advertising: %w", err)
	}

	a.mu.Lock()
	a.status = Advertising
	a.mu.Unlock()
	log.Printf("ble: advertising as %q (%s)", a.name, a.identity)
	return nil
}

// Status returns the last observed connection status.
func (a *Advertiser) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// Identity returns the adapter MAC, the payload rendered as the badge's
// QR code.
func (a *Advertiser) Identity() string {
	return a.identity
}
