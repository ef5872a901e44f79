package visibility

import (
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"
)

// MoonIllumination returns the illuminated fraction of the Moon at t, from 0
// (new) to 1 (full). It uses the Sun-Moon elongation in ecliptic longitude,
// which is good to about a percent.
func MoonIllumination(t time.Time) float64 {
	T := (julian.TimeToJD(t) - 2451545.0) / 36525.0

	elongation := moonLongitude(T) - solar.ApparentLongitude(T)
	return (1 - elongation.Cos()) / 2
}

// moonLongitude is the Moon's geocentric ecliptic longitude from the leading
// periodic terms (Meeus ch. 47).
func moonLongitude(T float64) unit.Angle {
	L := 218.3164477 + 481267.88123421*T - 0.0015786*T*T
	D := unit.AngleFromDeg(297.8501921 + 445267.1114034*T - 0.0018819*T*T).Mod1()
	M := unit.AngleFromDeg(357.5291092 + 35999.0502909*T - 0.0001536*T*T).Mod1()
	Mp := unit.AngleFromDeg(134.9633964 + 477198.8675055*T + 0.0087414*T*T).Mod1()
	F := unit.AngleFromDeg(93.2720950 + 483202.0175233*T - 0.0036539*T*T).Mod1()

	lon := L +
		6.288774*Mp.Sin() +
		1.274027*(2*D-Mp).Sin() +
		0.658314*(2*D).Sin() +
		0.213618*(2*Mp).Sin() -
		0.185116*M.Sin() -
		0.114332*(2*F).Sin()

	return unit.AngleFromDeg(lon).Mod1()
}
