package csm

// Project maps the view space triangle t onto a width x height pixel grid
// in place. After projection X and Y are pixel coordinates with the origin
// at the bottom left and Z is the positive view distance. The horizontal
// axis is scaled by the height so pixels stay square. t must have been
// clipped first so every vertex has z < 0.
func Project(width, height int, t *Triangle) {
	halfW, halfH := float32(width)/2, float32(height)/2
	for i := range t.V {
		v := &t.V[i]
		dist := -v.Z
		v.X = v.X/dist*halfH + halfW
		v.Y = v.Y/dist*halfH + halfH
		v.Z = dist
	}
}
