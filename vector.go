package main

import "math"

// Vector is a 2D scalar pair used for position, velocity and size
type Vector struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

func (v Vector) Add(o Vector) Vector { return Vector{v.X + o.X, v.Y + o.Y} }
func (v Vector) Sub(o Vector) Vector { return Vector{v.X - o.X, v.Y - o.Y} }
func (v Vector) Scale(s float64) Vector { return Vector{v.X * s, v.Y * s} }
func (v Vector) Len() float64 { return math.Hypot(v.X, v.Y) }
func (v Vector) IsZero() bool { return v.X == 0 && v.Y == 0 }
func FromAngle(a float64) Vector { return Vector{math.Cos(a), math.Sin(a)} }
func (v Vector) Angle() float64 { return math.Atan2(v.Y, v.X) }

// Unit returns v scaled to length 1, or the zero vector
func (v Vector) Unit() Vector {
	l := v.Len()
	if l == 0 {
		return Vector{}
	}
	return Vector{v.X / l, v.Y / l}
}
