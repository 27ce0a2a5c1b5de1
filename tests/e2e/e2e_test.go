// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// e2e implements the e2e tests. They run against a live network started with
// the avalanche-network-runner and expect the runner's gRPC server to be
// reachable at [endpoint].
package e2e_test

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"strings"
	"testing"
	"time"

	runner_sdk "github.com/ava-labs/avalanche-network-runner/client"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/fatih/color"
	ginkgo "github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/ava-labs/hypersdk/chain"
	"github.com/ava-labs/hypersdk/crypto"
	"github.com/ava-labs/hypersdk/rpc"
	hutils "github.com/ava-labs/hypersdk/utils"

	"github.com/ava-labs/metastablevm/actions"
	"github.com/ava-labs/metastablevm/auth"
	"github.com/ava-labs/metastablevm/consts"
	mrpc "github.com/ava-labs/metastablevm/rpc"
	"github.com/ava-labs/metastablevm/utils"
)

func TestE2e(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "metastablevm e2e test suites")
}

var (
	endpoint           string
	privateKeyHex      string
	requestTimeout     time.Duration
	healthPollInterval time.Duration
)

func init() {
	flag.StringVar(
		&endpoint,
		"endpoint",
		"0.0.0.0:12352",
		"network runner gRPC endpoint",
	)
	flag.StringVar(
		&privateKeyHex,
		"private-key-hex",
		"323b1d8f4eed5f0da9da93071b034f2dce9d2d22692c172f3cb252a64ddfafd01b057de320297c29ad0c1f589ea216869cf1938d88c9fbd70d6748323dbf2fa7",
		"hex-encoded ed25519 private key of a funded account",
	)
	flag.DurationVar(
		&requestTimeout,
		"request-timeout",
		120*time.Second,
		"timeout for transaction issuance and confirmation",
	)
	flag.DurationVar(
		&healthPollInterval,
		"health-poll-interval",
		10*time.Second,
		"interval to poll for network health",
	)
}

type instance struct {
	uri  string
	cli  *rpc.JSONRPCClient
	mcli *mrpc.JSONRPCClient
}

var (
	anrCli    runner_sdk.Client
	instances []instance
	parser    chain.Parser

	priv    crypto.PrivateKey
	factory *auth.ED25519Factory
	rsender crypto.PublicKey
	sender  string

	rsender2 crypto.PublicKey
	sender2  string

	// created during the suite
	asset     ids.ID
	pairID    ids.ID
	simReturn uint64
)

var _ = ginkgo.BeforeSuite(func() {
	var err error
	anrCli, err = runner_sdk.New(runner_sdk.Config{
		Endpoint:    endpoint,
		DialTimeout: 10 * time.Second,
	}, logging.NoLog{})
	gomega.Ω(err).Should(gomega.BeNil())
	awaitHealthy(anrCli)

	privBytes, err := hex.DecodeString(privateKeyHex)
	gomega.Ω(err).Should(gomega.BeNil())
	gomega.Ω(privBytes).Should(gomega.HaveLen(crypto.PrivateKeyLen))
	copy(priv[:], privBytes)
	factory = auth.NewED25519Factory(priv)
	rsender = priv.PublicKey()
	sender = utils.Address(rsender)

	priv2, err := crypto.GeneratePrivateKey()
	gomega.Ω(err).Should(gomega.BeNil())
	rsender2 = priv2.PublicKey()
	sender2 = utils.Address(rsender2)

	// Derive chain URIs from the running network
	ctx := context.Background()
	status, err := anrCli.Status(ctx)
	gomega.Ω(err).Should(gomega.BeNil())
	subnets := map[ids.ID][]ids.ID{}
	for chainName, chainInfo := range status.ClusterInfo.CustomChains {
		chainID, err := ids.FromString(chainName)
		gomega.Ω(err).Should(gomega.BeNil())
		subnetID, err := ids.FromString(chainInfo.SubnetId)
		gomega.Ω(err).Should(gomega.BeNil())
		subnets[subnetID] = append(subnets[subnetID], chainID)
	}
	for _, nodeInfo := range status.ClusterInfo.NodeInfos {
		if len(nodeInfo.WhitelistedSubnets) == 0 {
			continue
		}
		for _, subnet := range strings.Split(nodeInfo.WhitelistedSubnets, ",") {
			subnetID, err := ids.FromString(subnet)
			gomega.Ω(err).Should(gomega.BeNil())
			for _, chainID := range subnets[subnetID] {
				uri := fmt.Sprintf("%s/ext/bc/%s", nodeInfo.Uri, chainID)
				instances = append(instances, instance{
					uri:  uri,
					cli:  rpc.NewJSONRPCClient(uri),
					mcli: mrpc.NewJSONRPCClient(uri, chainID),
				})
			}
		}
	}
	gomega.Ω(instances).ShouldNot(gomega.BeEmpty())

	parser, err = instances[0].mcli.Parser(context.Background())
	gomega.Ω(err).Should(gomega.BeNil())

	color.Blue("found %d chain instances", len(instances))
})

var _ = ginkgo.AfterSuite(func() {
	if anrCli != nil {
		gomega.Ω(anrCli.Close()).Should(gomega.BeNil())
	}
})

var _ = ginkgo.Describe("[Ping]", func() {
	ginkgo.It("can ping", func() {
		for _, inst := range instances {
			ok, err := inst.cli.Ping(context.Background())
			gomega.Ω(ok).Should(gomega.BeTrue())
			gomega.Ω(err).Should(gomega.BeNil())
		}
	})
})

var _ = ginkgo.Describe("[Network]", func() {
	ginkgo.It("can get network", func() {
		for _, inst := range instances {
			_, _, chainID, err := inst.cli.Network(context.Background())
			gomega.Ω(err).Should(gomega.BeNil())
			gomega.Ω(chainID).ShouldNot(gomega.Equal(ids.Empty))
		}
	})
})

var _ = ginkgo.Describe("[Test]", func() {
	ginkgo.It("transfers native tokens", func() {
		balance, err := instances[0].mcli.Balance(context.Background(), sender, ids.Empty)
		gomega.Ω(err).Should(gomega.BeNil())
		gomega.Ω(balance).Should(gomega.BeNumerically(">", uint64(0)))

		acceptTx(instances[0], &actions.Transfer{
			To:    rsender2,
			Value: 100_000,
		}, factory)

		// every node should converge on the new balance
		for _, inst := range instances {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			err := inst.mcli.WaitForBalance(ctx, sender2, ids.Empty, 100_000)
			cancel()
			gomega.Ω(err).Should(gomega.BeNil())
		}
	})

	ginkgo.It("mints a fresh asset", func() {
		asset = acceptTx(instances[0], &actions.CreateAsset{
			Symbol:   []byte("MSE"),
			Decimals: consts.Decimals,
			Metadata: []byte("e2e test asset"),
		}, factory)
		acceptTx(instances[0], &actions.MintAsset{
			To:    rsender,
			Asset: asset,
			Value: 10_000_000,
		}, factory)

		for _, inst := range instances {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			err := inst.mcli.WaitForBalance(ctx, sender, asset, 10_000_000)
			cancel()
			gomega.Ω(err).Should(gomega.BeNil())
		}
	})

	ginkgo.It("provisions a pair", func() {
		// The native asset is the zero ID, so it always sorts first.
		pairID = acceptTx(instances[0], &actions.CreatePair{
			AssetX:         ids.Empty,
			AssetY:         asset,
			Amplification:  100,
			CommissionRate: 3_000_000,
		}, factory)
		acceptTx(instances[0], &actions.ProvideLiquidity{
			Pair:    pairID,
			AssetX:  ids.Empty,
			AssetY:  asset,
			AmountX: 1_000_000,
			AmountY: 1_000_000,
		}, factory)

		_, _, reserveX, reserveY, totalShare, err := instances[0].mcli.Pool(
			context.Background(),
			pairID,
		)
		gomega.Ω(err).Should(gomega.BeNil())
		gomega.Ω(reserveX).Should(gomega.Equal(uint64(1_000_000)))
		gomega.Ω(reserveY).Should(gomega.Equal(uint64(1_000_000)))
		gomega.Ω(totalShare).Should(gomega.Equal(uint64(2_000_000)))

		// the first deposit withholds the minimum liquidity
		for _, inst := range instances {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			err := inst.mcli.WaitForBalance(ctx, sender, pairID, 1_999_000)
			cancel()
			gomega.Ω(err).Should(gomega.BeNil())
		}
	})

	ginkgo.It("swaps against the pair", func() {
		var err error
		simReturn, _, _, err = instances[0].mcli.Simulate(
			context.Background(),
			pairID,
			ids.Empty,
			100_000,
		)
		gomega.Ω(err).Should(gomega.BeNil())
		gomega.Ω(simReturn).Should(gomega.BeNumerically(">", uint64(0)))

		acceptTx(instances[0], &actions.Swap{
			Pair:       pairID,
			OfferAsset: ids.Empty,
			AskAsset:   asset,
			AmountIn:   100_000,
		}, factory)

		_, _, reserveX, reserveY, _, err := instances[0].mcli.Pool(
			context.Background(),
			pairID,
		)
		gomega.Ω(err).Should(gomega.BeNil())
		gomega.Ω(reserveX).Should(gomega.Equal(uint64(1_100_000)))
		gomega.Ω(reserveY).Should(gomega.Equal(uint64(1_000_000) - simReturn))
	})

	ginkgo.It("withdraws liquidity", func() {
		expectedX, expectedY, err := instances[0].mcli.Share(
			context.Background(),
			pairID,
			999_000,
		)
		gomega.Ω(err).Should(gomega.BeNil())
		gomega.Ω(expectedX).Should(gomega.BeNumerically(">", uint64(0)))
		assetBalance, err := instances[0].mcli.Balance(context.Background(), sender, asset)
		gomega.Ω(err).Should(gomega.BeNil())

		acceptTx(instances[0], &actions.WithdrawLiquidity{
			Pair:   pairID,
			AssetX: ids.Empty,
			AssetY: asset,
			Shares: 999_000,
		}, factory)

		_, _, _, _, totalShare, err := instances[0].mcli.Pool(context.Background(), pairID)
		gomega.Ω(err).Should(gomega.BeNil())
		gomega.Ω(totalShare).Should(gomega.Equal(uint64(1_001_000)))

		shareBalance, err := instances[0].mcli.Balance(context.Background(), sender, pairID)
		gomega.Ω(err).Should(gomega.BeNil())
		gomega.Ω(shareBalance).Should(gomega.Equal(uint64(1_000_000)))

		newAssetBalance, err := instances[0].mcli.Balance(context.Background(), sender, asset)
		gomega.Ω(err).Should(gomega.BeNil())
		gomega.Ω(newAssetBalance).Should(gomega.Equal(assetBalance + expectedY))
	})
})

// acceptTx issues [action] signed by [factory] and blocks until the network
// accepts it.
func acceptTx(i instance, action chain.Action, factory chain.AuthFactory) ids.ID {
	submit, tx, _, err := i.cli.GenerateTransaction(
		context.Background(),
		parser,
		nil,
		action,
		factory,
	)
	gomega.Ω(err).Should(gomega.BeNil())
	gomega.Ω(submit(context.Background())).Should(gomega.BeNil())
	hutils.Outf("{{yellow}}submitted transaction:{{/}} %s\n", tx.ID())

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	success, err := i.mcli.WaitForTransaction(ctx, tx.ID())
	cancel()
	gomega.Ω(err).Should(gomega.BeNil())
	gomega.Ω(success).Should(gomega.BeTrue())
	return tx.ID()
}

func awaitHealthy(cli runner_sdk.Client) {
	for {
		time.Sleep(healthPollInterval)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		_, err := cli.Health(ctx)
		cancel()
		if err == nil {
			return
		}
		hutils.Outf(
			"{{yellow}}waiting for health check to pass:{{/}} %v\n",
			err,
		)
	}
}
