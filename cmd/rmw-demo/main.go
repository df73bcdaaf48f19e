// Command rmw-demo runs a small arithmetic RPC service, or a client for
// it, over the libp2p gossip transport. Two instances on the same LAN
// find each other via mdns:
//
//	rmw-demo -role service
//	rmw-demo -role client -value 42
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/esteve/rmw-libp2p/internal/config"
	"github.com/esteve/rmw-libp2p/internal/core/network"
	"github.com/esteve/rmw-libp2p/internal/rmw"
	"github.com/esteve/rmw-libp2p/internal/wire"
)

// doubleRequest and doubleResponse are the demo RPC pair: the service
// answers every request with twice the sent value.

type doubleRequestType struct{}

func (doubleRequestType) TypeName() string { return "demo_srvs/Double_Request" }

func (doubleRequestType) Encode(msg any, w *wire.Writer) error {
	v, ok := msg.(int64)
	if !ok {
		return rmw.ErrTypeMismatch
	}
	w.WriteInt64(v)
	return nil
}

func (doubleRequestType) Decode(r *wire.Reader) (any, error) {
	return r.ReadInt64()
}

type doubleResponseType struct{}

func (doubleResponseType) TypeName() string { return "demo_srvs/Double_Response" }

func (doubleResponseType) Encode(msg any, w *wire.Writer) error {
	v, ok := msg.(int64)
	if !ok {
		return rmw.ErrTypeMismatch
	}
	w.WriteInt64(v)
	return nil
}

func (doubleResponseType) Decode(r *wire.Reader) (any, error) {
	return r.ReadInt64()
}

func main() {
	configPath := flag.String("config", "", "path to YAML node config")
	role := flag.String("role", "service", "service or client")
	serviceName := flag.String("service", "demo/double", "service topic name")
	value := flag.Int64("value", 21, "value sent by the client role")
	timeout := flag.Duration("timeout", 10*time.Second, "client response timeout")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatal(err)
		}
	}

	transport, err := network.NewLibp2pPubSub(context.Background(), cfg.Transport.Libp2pOptions())
	if err != nil {
		log.Fatal(err)
	}
	defer transport.Close()
	log.Printf("peer %s listening on %v", transport.PeerID(), transport.ListenAddrs())

	node, err := rmw.NewNode(cfg.NodeName, transport)
	if err != nil {
		log.Fatal(err)
	}
	defer node.Close()

	switch *role {
	case "service":
		runService(node, *serviceName)
	case "client":
		runClient(node, *serviceName, *value, *timeout)
	default:
		log.Fatalf("unknown role %q", *role)
	}
}

func runService(node *rmw.Node, serviceName string) {
	svc, err := node.CreateService(serviceName, doubleRequestType{}, doubleResponseType{}, rmw.DefaultQoS)
	if err != nil {
		log.Fatal(err)
	}
	defer svc.Close()

	// SIGINT interrupts the blocking wait through a guard condition.
	interrupt, err := node.CreateGuardCondition()
	if err != nil {
		log.Fatal(err)
	}
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		interrupt.Trigger()
	}()

	log.Printf("service %q ready", serviceName)
	ws := rmw.NewWaitSet()
	for {
		listeners := []*rmw.Listener{svc.Listener()}
		guards := []*rmw.GuardCondition{interrupt}
		if _, err := ws.Wait(listeners, guards, rmw.WaitForever); err != nil {
			log.Fatal(err)
		}
		if interrupt.TakeAndReset() {
			log.Print("interrupted, shutting down")
			return
		}
		for {
			msg, id, ok, err := svc.TakeRequest()
			if err != nil {
				log.Printf("take request: %v", err)
				break
			}
			if !ok {
				break
			}
			v := msg.(int64)
			log.Printf("request %d from %s seq %d", v, id.Writer, id.Sequence)
			if err := svc.SendResponse(id, v*2); err != nil {
				log.Printf("send response: %v", err)
			}
		}
	}
}

func runClient(node *rmw.Node, serviceName string, value int64, timeout time.Duration) {
	cli, err := node.CreateClient(serviceName, doubleRequestType{}, doubleResponseType{}, rmw.DefaultQoS)
	if err != nil {
		log.Fatal(err)
	}
	defer cli.Close()

	// Give gossip a moment to propagate the response-topic subscription.
	time.Sleep(2 * time.Second)

	seq, err := cli.SendRequest(value)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("sent %d with sequence %d", value, seq)

	ws := rmw.NewWaitSet()
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			log.Fatal("timed out waiting for response")
		}
		res, err := ws.Wait([]*rmw.Listener{cli.Listener()}, nil, remaining)
		if err != nil {
			log.Fatal(err)
		}
		if res == rmw.Timeout {
			log.Fatal("timed out waiting for response")
		}
		msg, id, ok, err := cli.TakeResponse()
		if err != nil {
			log.Fatal(err)
		}
		if !ok {
			continue
		}
		if id.Sequence != seq {
			log.Printf("ignoring response for sequence %d", id.Sequence)
			continue
		}
		log.Printf("response: %d", msg.(int64))
		return
	}
}
