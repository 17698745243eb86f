package port

import (
	"fmt"
	"net"
)

func tryBind(host string, port int) error {
	listener, err := net.Listen("tcp", net.JoinHostPort(host, fmt.Sprint(port)))
	if err != nil {
		return err
	}
	return listener.Close()
}

// FindAvailable 从 start 开始向上找可用端口，最多尝试 attempts 次
func FindAvailable(host string, start, attempts int) (int, error) {
	for port := start; port < start+attempts && port <= 65535; port++ {
		if err := tryBind(host, port); err == nil {
			return port, nil
		}
	}
	return 0, fmt.Errorf("port: no free port in [%d, %d)", start, start+attempts)
}
