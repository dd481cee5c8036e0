// SPDX-License-Identifier: EPL-2.0

package buffers

import (
	"fmt"

	"github.com/ik5/sndpool/audio"
	"github.com/ik5/sndpool/backend"
	"github.com/spf13/afero"
)

// FileLoader decodes files from Fs with the decoders in Formats and uploads
// them to Device.
type FileLoader struct {
	Fs      afero.Fs
	Formats *audio.Registry
	Device  backend.Device
	// Mono downmixes every clip, as positional playback needs single
	// channel buffers.
	Mono bool
}

func (l *FileLoader) DecodeFile(path string) (backend.Buffer, error) {
	clip, err := l.Load(path)
	if err != nil {
		return 0, err
	}
	return l.Device.CreateBuffer(clip)
}

// Load decodes path and converts it to the device sample rate without
// uploading it.
func (l *FileLoader) Load(path string) (*audio.Clip, error) {
	dec, err := l.Formats.ForPath(path)
	if err != nil {
		return nil, err
	}

	f, err := l.Fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	clip, err := dec.Decode(f)
	if err != nil {
		return nil, err
	}

	clip = clip.Resample(l.Device.SampleRate())
	if l.Mono {
		clip = clip.Mono()
	}
	return clip, nil
}
