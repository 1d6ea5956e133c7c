// Package systemd answers unit-state questions for the provisioning
// workflow, preferring the systemd dbus API over shelling out.
package systemd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-systemd/v22/dbus"

	"github.com/standalone-kubelet/bootstrap/pkg/utils"
)

// Conn wraps a systemd dbus connection.
type Conn struct {
	conn *dbus.Conn
}

// NewConn connects to the systemd dbus. The caller owns the connection and
// must Close it.
func NewConn(ctx context.Context) (*Conn, error) {
	dbc, err := dbus.NewWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to systemd dbus: %w", err)
	}
	return &Conn{conn: dbc}, nil
}

// Close releases the dbus connection.
func (c *Conn) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

// IsActive reports whether the unit's ActiveState is "active".
func (c *Conn) IsActive(ctx context.Context, unitName string) (bool, error) {
	if c.conn == nil {
		return false, errors.New("connection not initialized")
	}
	if !c.conn.Connected() {
		return false, errors.New("connection disconnected")
	}
	if !strings.HasSuffix(unitName, ".service") && !strings.HasSuffix(unitName, ".target") {
		unitName = unitName + ".service"
	}

	props, err := c.conn.GetUnitPropertiesContext(ctx, unitName)
	if err != nil {
		return false, fmt.Errorf("unable to get unit properties for %s: %w", unitName, err)
	}
	activeState, ok := props["ActiveState"]
	if !ok {
		return false, fmt.Errorf("ActiveState property not found for unit %s", unitName)
	}
	s, ok := activeState.(string)
	if !ok {
		return false, fmt.Errorf("ActiveState property is not a string for unit %s", unitName)
	}
	return s == "active", nil
}

// UnitIsActive reports whether a unit is active, using dbus when reachable
// and falling back to systemctl otherwise (containers and test hosts often
// have no dbus socket).
func UnitIsActive(ctx context.Context, unitName string) bool {
	conn, err := NewConn(ctx)
	if err != nil {
		return utils.IsServiceActive(unitName)
	}
	defer conn.Close()

	active, err := conn.IsActive(ctx, unitName)
	if err != nil {
		return utils.IsServiceActive(unitName)
	}
	return active
}
