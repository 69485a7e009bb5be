package voxel

// Channel names one of the four independent light channels.
type Channel uint8

const (
	Sky Channel = iota
	Red
	Green
	Blue

	NumChannels = 4
)

// MaxLight is the brightest level a channel can hold.
const MaxLight = 15

var channelNames = [NumChannels]string{"sky", "red", "green", "blue"}

func (c Channel) String() string {
	if c < NumChannels {
		return channelNames[c]
	}
	return "unknown"
}

// Light packs four 4-bit channels: sky in the high nibble, then red, green, blue.
type Light uint16

// MakeLight builds a packed value from four channel levels (each clamped to 15).
func MakeLight(sky, r, g, b uint8) Light {
	var l Light
	l = l.With(Sky, sky)
	l = l.With(Red, r)
	l = l.With(Green, g)
	return l.With(Blue, b)
}

func shift(c Channel) uint {
	return uint(3-c) * 4
}

// Get returns the level of channel c.
func (l Light) Get(c Channel) uint8 {
	return uint8(l>>shift(c)) & 0xF
}

// With returns a copy of l with channel c set to level.
func (l Light) With(c Channel, level uint8) Light {
	if level > MaxLight {
		level = MaxLight
	}
	s := shift(c)
	return l&^(0xF<<s) | Light(level)<<s
}

func (l Light) Sky() uint8   { return l.Get(Sky) }
func (l Light) Red() uint8   { return l.Get(Red) }
func (l Light) Green() uint8 { return l.Get(Green) }
func (l Light) Blue() uint8  { return l.Get(Blue) }

// Max returns the channel-wise maximum of l and o.
func (l Light) Max(o Light) Light {
	for c := Channel(0); c < NumChannels; c++ {
		if o.Get(c) > l.Get(c) {
			l = l.With(c, o.Get(c))
		}
	}
	return l
}
