package server

// Request is one client message. Op selects which fields are read.
type Request struct {
	Op     string      `json:"op"`
	Object string      `json:"object,omitempty"`
	Delta  *[3]float32 `json:"delta,omitempty"`
	Axis   *[3]float32 `json:"axis,omitempty"`
	// Angle is in radians.
	Angle  float32     `json:"angle,omitempty"`
	Origin *[3]float32 `json:"origin,omitempty"`
	Dir    *[3]float32 `json:"dir,omitempty"`
	Max    float32     `json:"max,omitempty"`
}

const (
	OpTranslate = "translate"
	OpRotate    = "rotate"
	OpPick      = "pick"
	OpList      = "list"
	// OpCollision marks a message pushed to every client when a motion is
	// blocked. It is never sent by clients.
	OpCollision = "collision"
)

// Response answers one Request. Applied is the translation (xyz) or rotation
// quaternion (xyzw) that was applied, zeroed or identity when blocked.
type Response struct {
	Op          string       `json:"op"`
	Object      string       `json:"object,omitempty"`
	Applied     []float32    `json:"applied,omitempty"`
	Blocked     bool         `json:"blocked,omitempty"`
	Collisions  []Collision  `json:"collisions,omitempty"`
	Unsupported []string     `json:"unsupported,omitempty"`
	Pick        *Pick        `json:"pick,omitempty"`
	Objects     []ObjectInfo `json:"objects,omitempty"`
	Error       string       `json:"error,omitempty"`
}

type Collision struct {
	Object string `json:"object"`
	Path   string `json:"path"`
}

type Pick struct {
	Object   string     `json:"object"`
	Point    [3]float32 `json:"point"`
	Normal   [3]float32 `json:"normal"`
	Distance float32    `json:"distance"`
}

type ObjectInfo struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Kind     string     `json:"kind"`
	Detail   string     `json:"detail"`
	Position [3]float32 `json:"position"`
}

// Event is pushed to every client after a blocked motion, once per object hit.
type Event struct {
	Op     string `json:"op"`
	Mover  string `json:"mover"`
	Object string `json:"object"`
	Path   string `json:"path"`
}
