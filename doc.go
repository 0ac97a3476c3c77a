// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package dac is a container for D/A converter drivers.
//
// The MCP4725 driver lives in the mcp4725 package and the mcp4725 command in
// cmd/mcp4725.
package dac
