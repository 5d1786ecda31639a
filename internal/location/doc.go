// Package location supplies the user's coordinate. Static serves a
// configured coordinate and IPLookup asks an IP geolocation service. Both
// honour an allow flag standing in for the permission prompt, and Resolve
// runs the permission handshake exactly once.
package location
