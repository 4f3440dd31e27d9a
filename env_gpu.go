///////////////////////////////////////////////////////////////////////////////
// Copyright © 2026 Stratus Compute                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

//+build linux,gpu

package gpucrypt

// env_gpu.go is the CUDA-backed env. It drives the same staged-launch
// sequence as the cpu env through libgpucrypt, which holds the device
// renditions of the lane kernels. The staging buffer is the library's
// pinned host buffer, viewed from Go, so ops stage into it exactly like
// they stage into the cpu env's slice.

/*
#cgo CFLAGS: -I/opt/stratus/include
#cgo LDFLAGS: -L/opt/stratus/lib -lgpucrypt -Wl,-rpath,./lib:/opt/stratus/lib
#include <gpucrypt_export.h>
#include <stdlib.h>
*/
import "C"
import (
	"reflect"
	"unsafe"

	"github.com/pkg/errors"
)

type gpuEnv struct{}

func init() {
	defaultEnv = gpuEnv{}
}

// gpuStream is the device-side state parked on Stream.dev.
type gpuStream struct {
	s unsafe.Pointer
}

// Create byte slice viewing memory at a certain memory address with a
// certain length
// Here be dragons
func toSlice(pointer unsafe.Pointer, size int) []byte {
	return *(*[]byte)(unsafe.Pointer(
		&reflect.SliceHeader{Data: uintptr(pointer), Len: size, Cap: size}))
}

// Copies a C string into a Go error and frees the C string
func goError(cString *C.char) error {
	if cString != nil {
		errorStringGo := C.GoString(cString)
		err := errors.New(errorStringGo)
		C.free((unsafe.Pointer)(cString))
		return err
	}
	return nil
}

func cKernel(k kernel) C.enum_kernel {
	switch k {
	case kernelSha256:
		return C.KERNEL_SHA256
	case kernelKeccak256:
		return C.KERNEL_KECCAK256
	case kernelBlake2b:
		return C.KERNEL_BLAKE2B
	case kernelAesEnc:
		return C.KERNEL_AES_ENC
	case kernelAesDec:
		return C.KERNEL_AES_DEC
	case kernelChaCha20:
		return C.KERNEL_CHACHA20
	default:
		return C.KERNEL_SALSA20
	}
}

func (gpuEnv) createStream(memSize int) (*Stream, error) {
	createInfo := C.struct_streamCreateInfo{
		capacity: C.size_t(memSize),
	}
	createResult := C.createStream(createInfo)
	if err := goError(createResult.error); err != nil {
		return nil, err
	}
	return &Stream{
		cpuData: toSlice(C.getCpuStagingBuffer(createResult.result), memSize),
		dev:     &gpuStream{s: createResult.result},
	}, nil
}

func (gpuEnv) destroyStream(s *Stream) error {
	if s == nil || s.dev == nil {
		return nil
	}
	gs := s.dev.(*gpuStream)
	s.cpuData = nil
	s.dev = nil
	return goError(C.destroyStream(gs.s))
}

func (gpuEnv) stage(s *Stream, lp launchParams) error {
	if need := lp.streamSizeContaining(lp.numSlots); need > len(s.cpuData) {
		return errors.Errorf("launch of %v %v slots needs %v bytes, "+
			"stream has %v", lp.numSlots, lp.kern, need, len(s.cpuData))
	}
	s.launch = lp
	gs := s.dev.(*gpuStream)
	return goError(C.stageLaunch(gs.s, cKernel(lp.kern),
		C.uint(lp.numSlots), C.size_t(lp.constSize),
		C.size_t(lp.inSize), C.size_t(lp.outSize)))
}

func (gpuEnv) put(s *Stream) error {
	gs := s.dev.(*gpuStream)
	return goError(C.upload(gs.s))
}

func (gpuEnv) run(s *Stream) error {
	gs := s.dev.(*gpuStream)
	return goError(C.run(gs.s))
}

// Enqueue a download for this stream after execution finishes
// Doesn't actually block for the download
func (gpuEnv) download(s *Stream) error {
	gs := s.dev.(*gpuStream)
	return goError(C.download(gs.s))
}

// Wait for this stream's download to finish
func (gpuEnv) get(s *Stream) error {
	gs := s.dev.(*gpuStream)
	return goError(C.getResults(gs.s))
}

func resetDevice() error {
	return goError(C.resetDevice())
}
