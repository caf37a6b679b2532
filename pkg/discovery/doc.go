// Package discovery advertises tube listeners over mDNS/DNS-SD and
// browses for them.
//
// Listeners register the service type _pwntube._tcp. The instance name
// is chosen by the operator (default: "tube-<port>").
//
// TXT records:
//   - id:  connection ID of the listener
//   - ver: advert format version
//
// A listener accepts a single connection; an advert is withdrawn once
// the listener has accepted or closed.
package discovery
