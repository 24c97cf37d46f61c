// Copyright 2025 The go-gt511c3 Authors. All rights reserved.
// Use of this source code is governed by the license that can be
// found in the LICENSE file.

package gt511c3

import (
	"encoding/binary"
	"fmt"
)

// Command is a GT-511C3 command code, carried little-endian in the command
// frame's code field.
type Command uint16

// GT-511C3 command codes.
const (
	CmdOpen             Command = 0x01 // Open: initialization, optionally returns device info
	CmdClose            Command = 0x02 // Close: termination
	CmdUsbInternalCheck Command = 0x03 // Check if the connected USB device is valid
	CmdChangeBaudRate   Command = 0x04 // Change UART baud rate
	CmdSetIAPMode       Command = 0x05 // Enter IAP mode for firmware upgrade
	CmdCmosLed          Command = 0x12 // Control the CMOS LED backlight
	CmdGetEnrollCount   Command = 0x20 // Get enrolled fingerprint count
	CmdCheckEnrolled    Command = 0x21 // Check whether the specified ID is enrolled
	CmdEnrollStart      Command = 0x22 // Start an enrollment
	CmdEnroll1          Command = 0x23 // Make 1st template for an enrollment
	CmdEnroll2          Command = 0x24 // Make 2nd template for an enrollment
	CmdEnroll3          Command = 0x25 // Make 3rd template, merge and store
	CmdIsPressFinger    Command = 0x26 // Check if a finger is on the sensor
	CmdDeleteID         Command = 0x40 // Delete the fingerprint with the specified ID
	CmdDeleteAll        Command = 0x41 // Delete all fingerprints from the database
	CmdVerify           Command = 0x50 // 1:1 verification of the captured image
	CmdIdentify         Command = 0x51 // 1:N identification of the captured image
	CmdVerifyTemplate   Command = 0x52 // 1:1 verification of a supplied template
	CmdIdentifyTemplate Command = 0x53 // 1:N identification of a supplied template
	CmdCaptureFinger    Command = 0x60 // Capture a fingerprint image from the sensor
	CmdMakeTemplate     Command = 0x61 // Make a template for transmission
	CmdGetImage         Command = 0x62 // Download the captured fingerprint image
	CmdGetRawImage      Command = 0x63 // Capture and download a raw image
	CmdGetTemplate      Command = 0x70 // Download the template of the specified ID
	CmdSetTemplate      Command = 0x71 // Upload the template of the specified ID
	CmdGetDatabaseStart Command = 0x72 // Start database download, obsolete
	CmdGetDatabaseEnd   Command = 0x73 // End database download, obsolete
	CmdUpgradeFirmware  Command = 0x80 // Not supported by the device
	CmdUpgradeISOImage  Command = 0x81 // Not supported by the device
	CmdAck              Command = 0x30 // Acknowledge
	CmdNack             Command = 0x31 // Non-acknowledge
)

var commandNames = map[Command]string{
	CmdOpen:             "Open",
	CmdClose:            "Close",
	CmdUsbInternalCheck: "UsbInternalCheck",
	CmdChangeBaudRate:   "ChangeBaudRate",
	CmdSetIAPMode:       "SetIAPMode",
	CmdCmosLed:          "CmosLed",
	CmdGetEnrollCount:   "GetEnrollCount",
	CmdCheckEnrolled:    "CheckEnrolled",
	CmdEnrollStart:      "EnrollStart",
	CmdEnroll1:          "Enroll1",
	CmdEnroll2:          "Enroll2",
	CmdEnroll3:          "Enroll3",
	CmdIsPressFinger:    "IsPressFinger",
	CmdDeleteID:         "DeleteID",
	CmdDeleteAll:        "DeleteAll",
	CmdVerify:           "Verify",
	CmdIdentify:         "Identify",
	CmdVerifyTemplate:   "VerifyTemplate",
	CmdIdentifyTemplate: "IdentifyTemplate",
	CmdCaptureFinger:    "CaptureFinger",
	CmdMakeTemplate:     "MakeTemplate",
	CmdGetImage:         "GetImage",
	CmdGetRawImage:      "GetRawImage",
	CmdGetTemplate:      "GetTemplate",
	CmdSetTemplate:      "SetTemplate",
	CmdGetDatabaseStart: "GetDatabaseStart",
	CmdGetDatabaseEnd:   "GetDatabaseEnd",
	CmdUpgradeFirmware:  "UpgradeFirmware",
	CmdUpgradeISOImage:  "UpgradeISOImage",
	CmdAck:              "Ack",
	CmdNack:             "Nack",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Command(0x%02X)", uint16(c))
}

// Fixed payload sizes for commands followed by a data frame.
const (
	// DeviceInfoSize is the device-info payload returned by Open.
	DeviceInfoSize = 24
	// TemplateSize is the size of one fingerprint template.
	TemplateSize = 506
	// ImageSize is the size of a processed 256x256 fingerprint image.
	ImageSize = 52116
	// RawImageSize is the size of a raw QVGA capture downsampled to 160x120.
	RawImageSize = 19200
)

// DeviceInfo is the structure the scanner returns from the open handshake
// when device info is requested.
type DeviceInfo struct {
	FirmwareVersion uint32
	IsoAreaMaxSize  uint32
	SerialNumber    [16]byte
}

// UnmarshalBinary decodes the 24-byte device-info payload.
func (di *DeviceInfo) UnmarshalBinary(p []byte) error {
	if len(p) != DeviceInfoSize {
		return fmt.Errorf("%w: device info is %d bytes, want %d", ErrFrameLength, len(p), DeviceInfoSize)
	}
	di.FirmwareVersion = binary.LittleEndian.Uint32(p[0:])
	di.IsoAreaMaxSize = binary.LittleEndian.Uint32(p[4:])
	copy(di.SerialNumber[:], p[8:])
	return nil
}

func (di DeviceInfo) String() string {
	return fmt.Sprintf("fw=0x%08X iso=%d serial=%X", di.FirmwareVersion, di.IsoAreaMaxSize, di.SerialNumber)
}
