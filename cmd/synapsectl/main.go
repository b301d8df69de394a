package main

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/kyprware/synapse/wire"
)

func main() {
	cfg, err := parseConfig()
	if err != nil {
		printErrorAndExit(fmt.Sprintf("error parsing command-line arguments: %s", err))
	}

	conn, err := dial(cfg)
	if err != nil {
		printErrorAndExit(fmt.Sprintf("error connecting to the hub: %s", err))
	}
	defer conn.Close()

	responseChan := make(chan string)
	go func() {
		responseString, err := postRequests(cfg, conn)
		if err != nil {
			printErrorAndExit(fmt.Sprintf("error posting the request to the hub: %s", err))
		}
		responseChan <- responseString
	}()

	timeout := time.Duration(cfg.Timeout) * time.Second
	select {
	case responseString := <-responseChan:
		prettyResponseString := prettifyJSON(responseString)
		fmt.Println(prettyResponseString)
	case <-time.After(timeout):
		printErrorAndExit(fmt.Sprintf("timeout of %s has been exceeded", timeout))
	}
}

func dial(cfg *configFlags) (*tls.Conn, error) {
	tlsConfig := &tls.Config{}
	if cfg.SkipTLSVerification {
		tlsConfig.InsecureSkipVerify = true
	}
	if cfg.CertificatePath != "" {
		certificate, err := os.ReadFile(cfg.CertificatePath)
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't read certificate %s", cfg.CertificatePath)
		}
		certPool := x509.NewCertPool()
		if !certPool.AppendCertsFromPEM(certificate) {
			return nil, errors.Errorf("couldn't parse certificate %s", cfg.CertificatePath)
		}
		tlsConfig.RootCAs = certPool
	}
	return tls.Dial("tcp", cfg.Address, tlsConfig)
}

// postRequests performs the connect handshake and, when one is given, sends
// the request payload. It returns the JSON of the last response read.
func postRequests(cfg *configFlags, conn *tls.Conn) (string, error) {
	connectRequest, err := wire.NewRequest(uuid.New().String(), "connect", map[string]interface{}{
		"id":                   cfg.AppID,
		"authentication_token": cfg.AuthenticationToken,
	})
	if err != nil {
		return "", err
	}
	response, err := post(conn, connectRequest)
	if err != nil {
		return "", errors.Wrap(err, "connect handshake failed")
	}
	if response.Error != nil {
		return "", errors.Errorf("connect handshake rejected: %s", response.Error.Message)
	}

	if cfg.RequestJSON == "" {
		return marshalResponse(response)
	}

	request := &wire.Request{}
	err = json.Unmarshal([]byte(cfg.RequestJSON), request)
	if err != nil {
		return "", errors.Wrap(err, "couldn't parse the request payload")
	}
	if request.JSONRPC == "" {
		request.JSONRPC = wire.JSONRPCVersion
	}
	if request.ID == "" {
		request.ID = uuid.New().String()
	}

	response, err = post(conn, request)
	if err != nil {
		return "", err
	}
	return marshalResponse(response)
}

func post(conn *tls.Conn, request *wire.Request) (*wire.Response, error) {
	encoded, err := wire.EncodePayload(request)
	if err != nil {
		return nil, err
	}
	_, err = conn.Write(encoded)
	if err != nil {
		return nil, err
	}

	// The hub may fan other applications' payloads into this connection;
	// keep reading until the response to our request comes back.
	for {
		payload, err := wire.DecodePayload(conn)
		if err != nil {
			return nil, err
		}
		response, ok := payload.(*wire.Response)
		if !ok {
			continue
		}
		if response.ID == nil || *response.ID == request.ID {
			return response, nil
		}
	}
}

func marshalResponse(response *wire.Response) (string, error) {
	responseBytes, err := json.Marshal(response)
	if err != nil {
		return "", errors.Wrap(err, "couldn't serialize the response")
	}
	return string(responseBytes), nil
}

func prettifyJSON(jsonString string) string {
	var prettyJSON bytes.Buffer
	err := json.Indent(&prettyJSON, []byte(jsonString), "", "\t")
	if err != nil {
		printErrorAndExit(fmt.Sprintf("error prettifying the response from the hub: %s", err))
	}
	return prettyJSON.String()
}

func printErrorAndExit(message string) {
	fmt.Fprintf(os.Stderr, "%s\n", message)
	os.Exit(1)
}
