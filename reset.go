///////////////////////////////////////////////////////////////////////////////
// Copyright © 2026 Stratus Compute                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

//+build !linux !gpu

package gpucrypt

// ResetDevice is a no-op on the emulated device; there is no accelerator
// state to tear down.
func ResetDevice() error {
	return nil
}
