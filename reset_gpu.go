///////////////////////////////////////////////////////////////////////////////
// Copyright © 2026 Stratus Compute                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

//+build linux,gpu

package gpucrypt

// ResetDevice resets the CUDA device so profiles can be collected.
func ResetDevice() error {
	return resetDevice()
}
