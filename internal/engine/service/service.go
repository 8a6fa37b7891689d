// Package service maps destination ports to coarse service categories.
package service

import "Go2NetWindow/internal/model"

// ports is the static destination port table. Ports outside it are unknown.
var ports = map[uint16]model.Service{
	80:   model.ServiceHTTP,
	443:  model.ServiceHTTP,
	21:   model.ServiceOther, // ftp
	22:   model.ServiceOther, // ssh
	25:   model.ServiceOther, // smtp
	53:   model.ServiceOther, // dns
	110:  model.ServiceOther, // pop3
	143:  model.ServiceOther, // imap
	3389: model.ServiceOther, // rdp
}

// Classify returns the service category of a destination port.
func Classify(dstPort uint16) model.Service {
	return ports[dstPort]
}
