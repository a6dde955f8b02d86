package capture

import (
	"io"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// DefaultCamera is used when no video file is given
const DefaultCamera = 0

// Source reads frames from a camera or a video file.
// The frame returned by Next is reused and stays valid until the following call.
type Source struct {
	capture *gocv.VideoCapture
	frame   gocv.Mat
	name    string
}

// Open opens the video file at path, or the default camera when path is empty
func Open(path string) (*Source, error) {
	var (
		vc   *gocv.VideoCapture
		err  error
		name string
	)
	if path == "" {
		name = "camera 0"
		vc, err = gocv.VideoCaptureDevice(DefaultCamera)
	} else {
		name = path
		vc, err = gocv.VideoCaptureFile(path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", name)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, errors.Errorf("open %s: capture not opened", name)
	}

	return &Source{
		capture: vc,
		frame:   gocv.NewMat(),
		name:    name,
	}, nil
}

// Name describes the underlying device or file
func (s *Source) Name() string {
	return s.name
}

// Next grabs the next frame; io.EOF means the stream is over or the read failed
func (s *Source) Next() (gocv.Mat, error) {
	if ok := s.capture.Read(&s.frame); !ok || s.frame.Empty() {
		return s.frame, io.EOF
	}
	return s.frame, nil
}

// Close releases the capture device and the frame buffer
func (s *Source) Close() error {
	frameErr := s.frame.Close()
	if err := s.capture.Close(); err != nil {
		return errors.Wrapf(err, "close %s", s.name)
	}
	return frameErr
}
