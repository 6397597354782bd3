package hid

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/karalabe/hid"
	"go.uber.org/zap"

	"github.com/pleimann/tapboard/internal/utils"
)

// ErrNotFound is returned when no interface matches the configured IDs.
var ErrNotFound = errors.New("device not found")

const permissionHint = "\n  This may be a permissions issue. On macOS, try:\n" +
	"  1. System Settings > Privacy & Security > Input Monitoring\n" +
	"  2. Add Terminal (or your terminal app) to the list"

// Device is a connection to the touch overlay. It survives unplugging: after
// a read error, WaitForDevice reopens the same vendor and product.
type Device struct {
	vendorID  uint16
	productID uint16
	logger    *zap.Logger

	mu     sync.Mutex
	device *hid.Device
	closed bool
}

// NewDevice opens the touch overlay with the given vendor and product IDs.
func NewDevice(vendorID, productID uint16, logger *zap.Logger) (*Device, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Device{
		vendorID:  vendorID,
		productID: productID,
		logger:    logger,
	}

	dev, err := d.open()
	if errors.Is(err, ErrNotFound) {
		if len(hid.Enumerate(0, 0)) == 0 {
			return nil, fmt.Errorf("no HID devices found on system - check USB connection")
		}
		name := utils.ExecutableName()
		return nil, fmt.Errorf("no device found with VendorID=0x%04X, ProductID=0x%04X\n"+
			"  Run '%s list-devices' to see available devices\n"+
			"  Run '%s set-device' to configure the correct device",
			vendorID, productID, name, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w%s", err, permissionHint)
	}

	d.device = dev
	return d, nil
}

// interfaces lists the device's HID interfaces, digitizer interfaces first.
func (d *Device) interfaces() []hid.DeviceInfo {
	infos := hid.Enumerate(d.vendorID, d.productID)
	sort.SliceStable(infos, func(i, j int) bool {
		return infos[i].UsagePage == UsagePageDigitizer && infos[j].UsagePage != UsagePageDigitizer
	})
	return infos
}

// open opens the first interface that allows it. Composite devices expose
// interfaces the OS keeps for itself.
func (d *Device) open() (*hid.Device, error) {
	infos := d.interfaces()
	if len(infos) == 0 {
		return nil, ErrNotFound
	}

	var lastErr error
	for _, info := range infos {
		dev, err := info.Open()
		if err == nil {
			d.logger.Info("opened touch device",
				zap.String("product", info.Product),
				zap.String("path", info.Path),
				zap.Bool("digitizer", info.UsagePage == UsagePageDigitizer))
			return dev, nil
		}
		d.logger.Debug("interface failed to open", zap.String("path", info.Path), zap.Error(err))
		lastErr = err
	}
	return nil, fmt.Errorf("failed to open any of %d interfaces for device 0x%04X:0x%04X: %w",
		len(infos), d.vendorID, d.productID, lastErr)
}

// Close closes the connection. Pending and later reads return ErrClosed.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	if d.device != nil {
		err := d.device.Close()
		d.device = nil
		return err
	}
	return nil
}

// ReadTouches reads reports until ctx is done or a read fails, sending touch
// reports to events. Other reports are skipped.
func (d *Device) ReadTouches(ctx context.Context, events chan<- TouchEvent) error {
	buf := make([]byte, MaxReportSize)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		d.mu.Lock()
		dev, closed := d.device, d.closed
		d.mu.Unlock()
		if closed || dev == nil {
			return ErrClosed
		}

		n, err := dev.Read(buf)
		if err != nil {
			return fmt.Errorf("read error: %w", err)
		}
		if n == 0 {
			continue
		}

		event, err := ParseTouch(buf[:n])
		if err != nil {
			if !errors.Is(err, ErrReportID) {
				d.logger.Warn("dropping malformed report", zap.Binary("report", buf[:n]), zap.Error(err))
			}
			continue
		}

		select {
		case events <- *event:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Write sends a raw report to the device
func (d *Device) Write(data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed || d.device == nil {
		return ErrClosed
	}

	_, err := d.device.Write(data)
	return err
}

// SendFrame sends a display frame to the device
func (d *Device) SendFrame(frame *DisplayFrame) error {
	return d.Write(frame.Encode())
}

// Reconnect drops the current handle and opens the device again. It fails
// once Close has been called.
func (d *Device) Reconnect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	if d.device != nil {
		d.device.Close()
		d.device = nil
	}

	dev, err := d.open()
	if err != nil {
		return err
	}
	d.device = dev
	d.logger.Info("reconnected touch device")
	return nil
}

// WaitForDevice polls until the device can be reopened or ctx is done.
func (d *Device) WaitForDevice(ctx context.Context, pollInterval time.Duration) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			err := d.Reconnect()
			if err == nil || errors.Is(err, ErrClosed) {
				return err
			}
		}
	}
}
