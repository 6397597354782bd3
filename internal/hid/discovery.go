package hid

import (
	"github.com/karalabe/hid"
)

// UsagePageDigitizer is the HID usage page of touch screens and pads.
const UsagePageDigitizer = 0x0D

// DeviceInfo contains information about a discovered HID device
type DeviceInfo struct {
	VendorID     uint16
	ProductID    uint16
	Path         string
	Manufacturer string
	Product      string
	SerialNumber string
	UsagePage    uint16
	Usage        uint16
}

// IsDigitizer reports whether the interface describes itself as a touch device.
func (d DeviceInfo) IsDigitizer() bool {
	return d.UsagePage == UsagePageDigitizer
}

func toInfo(d hid.DeviceInfo) DeviceInfo {
	return DeviceInfo{
		VendorID:     d.VendorID,
		ProductID:    d.ProductID,
		Path:         d.Path,
		Manufacturer: d.Manufacturer,
		Product:      d.Product,
		SerialNumber: d.Serial,
		UsagePage:    d.UsagePage,
		Usage:        d.Usage,
	}
}

// ListDevices returns all available HID devices, touch devices first
func ListDevices() ([]DeviceInfo, error) {
	devices := hid.Enumerate(0, 0)

	var touch, other []DeviceInfo
	for _, d := range devices {
		info := toInfo(d)
		if info.IsDigitizer() {
			touch = append(touch, info)
		} else {
			other = append(other, info)
		}
	}

	return append(touch, other...), nil
}
