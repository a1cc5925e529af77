// Copyright (c) 2022 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package main

import (
    "bytes"
    "encoding/json"
    "flag"
    "fmt"
    "io"
    "net/http"
    "net/url"
    "os"

    "github.com/echa/log"
    cid "github.com/ipfs/go-cid"
    mc "github.com/multiformats/go-multicodec"
    mh "github.com/multiformats/go-multihash"
    "github.com/near/borsh-go"

    "blockwatch.cc/nns-near/pkg/near"
    "blockwatch.cc/nns-near/pkg/nns"
)

var (
    nodeEndpoint string
    accountId    string
    ownerId      string
    name         string
    secret       string
    seed         string
    content      string
    years        int64
    feeAmount    uint64
    reverse      bool
    flags        = flag.NewFlagSet("sim", flag.ContinueOnError)
)

func init() {
    flags.Usage = func() {}
    flags.StringVar(&nodeEndpoint, "node", "http://localhost:8000", "NNS gateway endpoint")
    flags.StringVar(&accountId, "account", os.Getenv("NNS_ACCOUNT_ID"), "paying account")
    flags.StringVar(&ownerId, "owner", "", "name owner (defaults to the paying account)")
    flags.StringVar(&name, "name", "", "label to register")
    flags.StringVar(&secret, "secret", "salt", "commitment secret")
    flags.StringVar(&seed, "seed", os.Getenv("NNS_SEED_PHRASE"), "voucher signing key seed")
    flags.StringVar(&content, "content", "", "content to publish under the name")
    flags.Int64Var(&years, "years", 1, "registration duration in years")
    flags.Uint64Var(&feeAmount, "fee", 1000, "payment voucher amount")
    flags.BoolVar(&reverse, "reverse", true, "claim the reverse record")
}

func main() {
    if err := run(); err != nil {
        log.Fatalf("Error: %v\n", err)
    }
}

// PaymentTx mirrors the gateway's borsh voucher layout. Sig signs the
// borsh serialization of the voucher with Sig itself left empty.
type PaymentTx struct {
    Nonce    uint64
    Sender   string
    Receiver string
    Amount   uint64
    SignedBy near.Pubkey
    Sig      near.Signature
}

type RegisterRequest struct {
    Name       string `json:"name"`
    Owner      string `json:"owner"`
    Duration   int64  `json:"duration"`
    Secret     string `json:"secret"`
    ContentCid string `json:"content_cid,omitempty"`
    Reverse    bool   `json:"reverse,omitempty"`
    FeeTx      []byte `json:"fee_tx"`
}

type RegisterResponse struct {
    Name    string `json:"name"`
    Node    string `json:"node"`
    Owner   string `json:"owner"`
    Cost    uint64 `json:"cost"`
    Expires int64  `json:"expires"`
}

func run() error {
    err := flags.Parse(os.Args[1:])
    if err != nil {
        if err == flag.ErrHelp {
            fmt.Printf("Usage: %s [flags]\n", os.Args[0])
            fmt.Println("\nFlags")
            flags.PrintDefaults()
            return nil
        }
        return err
    }

    if name == "" {
        return fmt.Errorf("Empty name")
    }
    if accountId == "" {
        return fmt.Errorf("Empty account id")
    }
    if ownerId == "" {
        ownerId = accountId
    }

    // publish content under a CIDv1 when requested
    var contentCid string
    if content != "" {
        pref := cid.Prefix{
            Version:  1,
            Codec:    uint64(mc.Raw),
            MhType:   mh.SHA2_256,
            MhLength: -1, // default length
        }
        c, err := pref.Sum([]byte(content))
        if err != nil {
            return err
        }
        contentCid = c.String()
        log.Infof("Publishing content cid %s", contentCid)
    }

    // the payment voucher travels borsh-encoded and ed25519-signed
    // inside the request
    kp := near.NewKeyPairFromSeed(seed)
    tx := PaymentTx{
        Nonce:    1,
        Sender:   accountId,
        Receiver: "controller.nns",
        Amount:   feeAmount,
        SignedBy: kp.Pubkey(),
    }
    payload, err := borsh.Serialize(tx)
    if err != nil {
        return fmt.Errorf("serializing payment tx: %v", err)
    }
    tx.Sig = near.EncodeSignature(kp.Sign(payload))
    feeTx, err := borsh.Serialize(tx)
    if err != nil {
        return fmt.Errorf("serializing payment tx: %v", err)
    }

    req := RegisterRequest{
        Name:       name,
        Owner:      ownerId,
        Duration:   years * nns.SECONDS_PER_YEAR,
        Secret:     secret,
        ContentCid: contentCid,
        Reverse:    reverse,
        FeeTx:      feeTx,
    }
    buf, _ := json.Marshal(req)
    log.Infof("Registration request %s", string(buf))

    resp, err := http.Post(nodeEndpoint+"/register", "application/json", bytes.NewBuffer(buf))
    if err != nil {
        return err
    }
    defer resp.Body.Close()
    if resp.StatusCode != http.StatusOK {
        msg, _ := io.ReadAll(resp.Body)
        return fmt.Errorf("registration failed: %s: %s", resp.Status, bytes.TrimSpace(msg))
    }

    var res RegisterResponse
    dec := json.NewDecoder(resp.Body)
    if err := dec.Decode(&res); err != nil {
        return err
    }
    log.Infof("Registered %s -> owner %s, cost %d, expires %d", res.Name, res.Owner, res.Cost, res.Expires)

    // read back forward and reverse resolution
    var fwd map[string]interface{}
    if err := getJson(nodeEndpoint+"/resolve?name="+url.QueryEscape(res.Name), &fwd); err != nil {
        return err
    }
    log.Infof("Resolved %#v", fwd)

    if reverse {
        var rev map[string]interface{}
        if err := getJson(nodeEndpoint+"/reverse?account="+url.QueryEscape(ownerId), &rev); err != nil {
            return err
        }
        log.Infof("Reverse %#v", rev)
    }
    return nil
}

func getJson(uri string, v interface{}) error {
    resp, err := http.Get(uri)
    if err != nil {
        return err
    }
    defer resp.Body.Close()
    if resp.StatusCode != http.StatusOK {
        msg, _ := io.ReadAll(resp.Body)
        return fmt.Errorf("%s: %s", resp.Status, bytes.TrimSpace(msg))
    }
    dec := json.NewDecoder(resp.Body)
    return dec.Decode(v)
}
