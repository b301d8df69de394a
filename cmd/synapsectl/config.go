package main

import (
	"github.com/jessevdk/go-flags"
)

const defaultTimeout uint64 = 30

type configFlags struct {
	Address             string `long:"address" short:"a" description:"Hub address to connect to" default:"localhost:8080"`
	CertificatePath     string `long:"cert" description:"Path to a certificate accepted by the hub"`
	SkipTLSVerification bool   `long:"skip-tls-verification" description:"Skip TLS certificate verification (testing only)"`
	AppID               string `long:"id" description:"Application ID to connect as" required:"true"`
	AuthenticationToken string `long:"token" description:"Session token to authenticate with" required:"true"`
	RequestJSON         string `long:"json" short:"j" description:"A JSON-RPC request payload to send after connecting"`
	Timeout             uint64 `long:"timeout" short:"t" description:"Timeout for the request (in seconds)"`
}

func parseConfig() (*configFlags, error) {
	cfg := &configFlags{
		Timeout: defaultTimeout,
	}
	parser := flags.NewParser(cfg, flags.PrintErrors|flags.HelpFlag)
	_, err := parser.Parse()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
