// Analyze a block: transaction order by gas price, builder net reward and a reordering revenue simulation
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/metachris/go-ethutils/utils"
	"github.com/metachris/mev-block-analyzer/analyzer"
	"github.com/metachris/mev-block-analyzer/common"
	"github.com/metachris/mev-block-analyzer/config"
	"github.com/metachris/mev-block-analyzer/etherscan"
	"github.com/metachris/mev-block-analyzer/flashbots"
	"github.com/metachris/mev-block-analyzer/simulate"
)

func main() {
	log.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	blockPtr := flag.Int64("block", cfg.BlockNumber, "block to analyze")
	startPtr := flag.Int("start", cfg.StartIdx, "index of the first transaction for the reordering simulation")
	numPtr := flag.Int("num", cfg.NumTxs, "number of transactions for the reordering simulation")
	orderPtr := flag.Bool("order", false, "only check the transaction order")
	rewardPtr := flag.Bool("reward", false, "only calculate the builder net reward")
	reorderPtr := flag.Bool("reorder", false, "only run the reordering simulation")
	flashbotsPtr := flag.Bool("flashbots", false, "query the Flashbots mev-blocks API for bundles in the block")
	flag.Parse()

	all := !*orderPtr && !*rewardPtr && !*reorderPtr

	client := etherscan.NewClient(cfg.APIKey, cfg.EtherscanURL)
	service := analyzer.NewService(client, cfg)
	service.StartIdx = *startPtr
	service.NumTxs = *numPtr
	if *flashbotsPtr {
		service.Flashbots = flashbots.NewClient(cfg.FlashbotsURL)
	}

	ctx := context.Background()
	fmt.Printf("Fetching data for block %d...\n\n", *blockPtr)

	if all || *orderPtr {
		result, err := service.AuditBlock(ctx, *blockPtr)
		utils.Perror(err)
		fmt.Println(result.Sprint(true, false))
	}

	if all || *rewardPtr {
		report, err := service.BuilderReward(ctx, *blockPtr)
		utils.Perror(err)
		fmt.Println(report.String())
	}

	if all || *reorderPtr {
		cmp, window, err := service.CompareOrderings(ctx, *blockPtr)
		utils.Perror(err)
		printComparison(cmp, window)
	}
}

func printComparison(cmp *simulate.Comparison, window []common.TransactionRecord) {
	fmt.Printf("Simulating %d transactions. Base fee: %s, block gas limit: %s\n", len(window), common.BigIntToEString(cmp.BaseFee, 4), utils.NumberToHumanReadableString(int64(cmp.GasLimit), 0))

	txTable := table.NewWriter()
	txTable.AppendHeader(table.Row{"#", "Tx", "Sender", "Nonce", "Gas used", "Effective tip", "Status"})
	for i, tx := range window {
		tip, err := simulate.EffectiveTip(tx, cmp.BaseFee)
		utils.Perror(err)
		status := "ok"
		if tx.Failed {
			status = "failed"
		}
		txTable.AppendRow(table.Row{i, tx.Hash, tx.Sender, tx.Nonce, tx.GasUsed, common.BigIntToEString(tip, 4), status})
	}
	fmt.Println(txTable.Render())

	printSkipped("original", cmp.Original)
	printSkipped("reordered", cmp.Reordered)

	resultTable := table.NewWriter()
	resultTable.AppendHeader(table.Row{"Ordering", "Builder revenue (wei)", "Simulated gas used", "Skipped tx"})
	resultTable.AppendRow(table.Row{"original", common.DecimalToEString(cmp.Original.TotalRevenue, 4), cmp.Original.TotalGasUsed.StringFixed(0), len(cmp.Original.Skipped)})
	resultTable.AppendRow(table.Row{"reordered by tip", common.DecimalToEString(cmp.Reordered.TotalRevenue, 4), cmp.Reordered.TotalGasUsed.StringFixed(0), len(cmp.Reordered.Skipped)})
	fmt.Println(resultTable.Render())

	if cmp.Improved {
		fmt.Println(cmp.Verdict())
	} else {
		utils.ColorPrintf(utils.WarningColor, "%s\n", cmp.Verdict())
	}
}

func printSkipped(ordering string, res *simulate.Result) {
	for _, skipped := range res.Skipped {
		utils.ColorPrintf(utils.WarningColor, "[%s] %s\n", ordering, skipped)
	}
}
