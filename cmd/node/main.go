// Copyright (c) 2022 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package main

import (
    "encoding/json"
    "flag"
    "fmt"
    "net/http"
    "os"
    "time"

    "github.com/echa/log"
    "github.com/gorilla/schema"
    cid "github.com/ipfs/go-cid"
    "github.com/near/borsh-go"

    "blockwatch.cc/nns-near/pkg/near"
    "blockwatch.cc/nns-near/pkg/nns"
)

var (
    tld      string
    adminId  string
    treasury string
    port     string
    decoder  = schema.NewDecoder()
    flags    = flag.NewFlagSet("node", flag.ContinueOnError)
    env      *near.Env
    suite    *nns.Suite
)

func init() {
    flags.Usage = func() {}
    flags.StringVar(&tld, "tld", envOr("NNS_TLD", "near"), "top level namespace")
    flags.StringVar(&adminId, "admin", envOr("NNS_ADMIN_ID", "admin.near"), "registry admin account")
    flags.StringVar(&treasury, "treasury", envOr("NNS_TREASURY_ID", "treasury.near"), "treasury account")
    flags.StringVar(&port, "port", "8000", "HTTP server port")
}

func envOr(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func main() {
    if err := run(); err != nil {
        log.Fatalf("Error: %v\n", err)
    }
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

    if adminId == "" {
        return fmt.Errorf("Empty admin account id")
    }
    if tld == "" {
        return fmt.Errorf("Empty namespace")
    }
    if treasury == "" {
        return fmt.Errorf("Empty treasury account id")
    }

    env = near.NewEnv(time.Now().Unix())
    suite = nns.Deploy(env, near.AccountID(adminId), tld, near.AccountID(treasury))
    log.Infof("Deployed namespace .%s, admin %s, treasury %s", tld, adminId, treasury)

    // use default http server
    log.Infof("Listening on :%s", port)
    http.HandleFunc("/resolve", resolveHandler)
    http.HandleFunc("/reverse", reverseHandler)
    http.HandleFunc("/register", registerHandler)
    return http.ListenAndServe(":"+port, nil)
}

// keep the ledger clock in step with wall time
func syncClock() {
    if d := time.Now().Unix() - env.Now(); d > 0 {
        env.Skip(d)
    }
}

// contract reverts surface as HTTP errors
func withRevert(w http.ResponseWriter, status int, fn func()) (ok bool) {
    defer func() {
        if r := recover(); r != nil {
            log.Errorf("revert: %v", r)
            http.Error(w, fmt.Sprintf("%v", r), status)
            ok = false
        }
    }()
    fn()
    return true
}

func writeJson(w http.ResponseWriter, v interface{}) {
    buf, err := json.Marshal(v)
    if err != nil {
        log.Error(err)
        http.Error(w, err.Error(), http.StatusInternalServerError)
        return
    }
    w.Header().Set("Content-Type", "application/json")
    w.Header().Set("Date", time.Now().Format(http.TimeFormat))
    w.WriteHeader(http.StatusOK)
    w.Write(buf)
}

type ResolveRequest struct {
    Name string `schema:"name,required"`
}

type ResolveResponse struct {
    Name        string `json:"name"`
    Node        string `json:"node"`
    Owner       string `json:"owner"`
    Addr        string `json:"addr,omitempty"`
    ContentCid  string `json:"content_cid,omitempty"`
    DisplayName string `json:"display_name,omitempty"`
    Expires     int64  `json:"expires,omitempty"`
}

func resolveHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet {
        http.Error(w, "invalid method", http.StatusMethodNotAllowed)
        return
    }
    var req ResolveRequest
    if err := decoder.Decode(&req, r.URL.Query()); err != nil {
        log.Error(err)
        http.Error(w, err.Error(), http.StatusBadRequest)
        return
    }
    syncClock()

    node := nns.NameHash(req.Name)
    resp := ResolveResponse{
        Name:        req.Name,
        Node:        node.Hex(),
        Owner:       string(suite.Registry.Owner(node)),
        DisplayName: suite.Resolver.Name(node),
    }
    func() {
        // missing address records leave the field empty
        defer func() { recover() }()
        resp.Addr = string(suite.Forwarder.ResolveAddress(req.Name))
    }()
    if hash := suite.Resolver.Contenthash(node); len(hash) > 0 {
        if c, err := cid.Cast(hash); err == nil {
            resp.ContentCid = c.String()
        }
    }
    if label, ok := leafLabel(req.Name); ok {
        resp.Expires = suite.Registrar.NameExpires(nns.TokenOf(label))
    }
    writeJson(w, resp)
}

// leafLabel splits "alice.near" into "alice" when the name sits
// directly under the configured tld.
func leafLabel(name string) (string, bool) {
    suffix := "." + tld
    if len(name) <= len(suffix) || name[len(name)-len(suffix):] != suffix {
        return "", false
    }
    label := name[:len(name)-len(suffix)]
    for i := 0; i < len(label); i++ {
        if label[i] == '.' {
            return "", false
        }
    }
    return label, true
}

type ReverseRequest struct {
    Account string `schema:"account,required"`
}

type ReverseResponse struct {
    Account string `json:"account"`
    Node    string `json:"node"`
    Name    string `json:"name"`
}

func reverseHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet {
        http.Error(w, "invalid method", http.StatusMethodNotAllowed)
        return
    }
    var req ReverseRequest
    if err := decoder.Decode(&req, r.URL.Query()); err != nil {
        log.Error(err)
        http.Error(w, err.Error(), http.StatusBadRequest)
        return
    }
    syncClock()

    node := suite.Reverse.Node(near.AccountID(req.Account))
    writeJson(w, ReverseResponse{
        Account: req.Account,
        Node:    node.Hex(),
        Name:    suite.Resolver.Name(node),
    })
}

// PaymentTx is the borsh-encoded payment voucher a client attaches to
// a relayed registration. Sig signs the borsh serialization of the
// voucher with Sig itself left empty.
type PaymentTx struct {
    Nonce    uint64
    Sender   string
    Receiver string
    Amount   uint64
    SignedBy near.Pubkey
    Sig      near.Signature
}

// verifyVoucher checks the voucher's ed25519 signature against its
// embedded pubkey.
func verifyVoucher(fee PaymentTx) bool {
    sig := fee.Sig
    fee.Sig = ""
    payload, err := borsh.Serialize(fee)
    if err != nil {
        return false
    }
    return fee.SignedBy.Verify(payload, sig)
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

func registerHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost {
        http.Error(w, "invalid method", http.StatusMethodNotAllowed)
        return
    }
    var req RegisterRequest
    dec := json.NewDecoder(r.Body)
    if err := dec.Decode(&req); err != nil {
        log.Error(err)
        http.Error(w, err.Error(), http.StatusBadRequest)
        return
    }
    r.Body.Close()

    var fee PaymentTx
    if err := borsh.Deserialize(&fee, req.FeeTx); err != nil {
        log.Error(err)
        http.Error(w, fmt.Sprintf("invalid fee tx: %v", err), http.StatusBadRequest)
        return
    }
    if fee.Sender == "" || fee.Amount == 0 {
        http.Error(w, "missing payment", http.StatusBadRequest)
        return
    }
    if !verifyVoucher(fee) {
        http.Error(w, "invalid voucher signature", http.StatusBadRequest)
        return
    }
    syncClock()

    // credit the voucher, then run commit/reveal on the sender's
    // behalf; the reveal window passes on the ledger clock
    sender := near.AccountID(fee.Sender)
    owner := near.AccountID(req.Owner)
    env.Fund(sender, near.Money(fee.Amount))
    log.Infof("Registering %s.%s for %s, duration %ds", req.Name, tld, req.Owner, req.Duration)

    ok := withRevert(w, http.StatusConflict, func() {
        env.Call(sender, 0, func() {
            suite.Ctrl.Commit(suite.Ctrl.MakeCommitment(req.Name, owner, req.Secret))
        })
        env.Skip(nns.MIN_COMMITMENT_AGE + 1)
        env.Call(sender, near.Money(fee.Amount), func() {
            suite.Ctrl.RegisterWithRecord(req.Name, owner, req.Duration, req.Secret)
        })
    })
    if !ok {
        return
    }

    node := suite.NodeOf(req.Name)
    if req.ContentCid != "" {
        c, err := cid.Decode(req.ContentCid)
        if err != nil {
            log.Error(err)
            http.Error(w, fmt.Sprintf("invalid cid: %v", err), http.StatusBadRequest)
            return
        }
        env.Call(owner, 0, func() {
            suite.Resolver.SetContenthash(node, c.Bytes())
        })
    }
    if req.Reverse {
        env.Call(suite.Ctrl.Account(), 0, func() {
            suite.Reverse.SetNameForAddr(owner, owner, suite.Resolver.Account(), suite.FullName(req.Name))
        })
    }

    cost := suite.Ctrl.RentPrice(req.Name, req.Duration).Total()
    writeJson(w, RegisterResponse{
        Name:    suite.FullName(req.Name),
        Node:    node.Hex(),
        Owner:   req.Owner,
        Cost:    uint64(cost),
        Expires: suite.Registrar.NameExpires(nns.TokenOf(req.Name)),
    })
}
