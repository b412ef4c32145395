package server

import (
	"fmt"
	"net"
)

// AdvertiseAddr picks the address a node should tell peers to reach it at,
// when the operator has not supplied one explicitly: the first non-loopback
// IPv4 address of an interface that is up, preferring a private (RFC1918)
// address over a public one when both exist on the host.
func AdvertiseAddr(port int) (string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", fmt.Errorf("server: list interfaces: %w", err)
	}

	var privateIP, publicIP net.IP
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			var ip net.IP
			switch v := a.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			ip = ip.To4()
			if ip == nil || ip.IsLoopback() {
				continue
			}
			if isPrivateIP(ip) {
				if privateIP == nil {
					privateIP = ip
				}
			} else if publicIP == nil {
				publicIP = ip
			}
		}
	}

	switch {
	case privateIP != nil:
		return fmt.Sprintf("%s:%d", privateIP, port), nil
	case publicIP != nil:
		return fmt.Sprintf("%s:%d", publicIP, port), nil
	default:
		return "", fmt.Errorf("server: no suitable network interface found")
	}
}

func isPrivateIP(ip net.IP) bool {
	for _, block := range []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"} {
		_, cidr, _ := net.ParseCIDR(block)
		if cidr.Contains(ip) {
			return true
		}
	}
	return false
}
