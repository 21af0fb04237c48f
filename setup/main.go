package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path"
	"strings"
)

// generates a setup_env.sh that exports the service's json config blobs
// from a directory of per-concern config files
func main() {
	type cfgData struct {
		File   string
		EnvVar string
	}

	var cfgDir string
	var tgtEnv string
	var port string
	flag.StringVar(&cfgDir, "dir", "", "local directory holding the environment config trees")
	flag.StringVar(&tgtEnv, "env", "staging", "production or staging")
	flag.StringVar(&port, "port", "8080", "port to run the service on")
	flag.Parse()

	if cfgDir == "" {
		log.Fatal("dir is required")
	}
	if tgtEnv != "staging" && tgtEnv != "production" {
		log.Fatal("env must be staging or production")
	}

	cfgBase := path.Join(cfgDir, tgtEnv, "offer-search-ws/environment")

	log.Printf("Generate service config for %s from %s", tgtEnv, cfgBase)
	cfgFiles := []cfgData{
		{File: "service.json", EnvVar: "OFFER_SEARCH_WS_JSON_01"},
		{File: "solr.json", EnvVar: "OFFER_SEARCH_WS_JSON_02"},
		{File: "search.json", EnvVar: "OFFER_SEARCH_WS_JSON_03"},
		{File: "relevancy.json", EnvVar: "OFFER_SEARCH_WS_JSON_04"},
		{File: "makes.json", EnvVar: "OFFER_SEARCH_WS_JSON_05"},
		{File: "categories.json", EnvVar: "OFFER_SEARCH_WS_JSON_06"},
		{File: "rates.json", EnvVar: "OFFER_SEARCH_WS_JSON_07"},
	}

	out := make([]string, 0)
	for _, cf := range cfgFiles {
		tgtFile := path.Join(cfgBase, cf.File)
		jsonBytes, err := os.ReadFile(tgtFile)
		if err != nil {
			log.Fatal(err.Error())
		}

		if cf.EnvVar == "OFFER_SEARCH_WS_JSON_01" {
			// this is the service config where the port is set to "8080" override
			updated := strings.Replace(string(jsonBytes), "8080", port, 1)
			jsonBytes = []byte(updated)
		}

		var compacted bytes.Buffer
		if err := json.Compact(&compacted, jsonBytes); err != nil {
			log.Fatalf("%s: %s", tgtFile, err.Error())
		}

		out = append(out, fmt.Sprintf("export %s='%s'", cf.EnvVar, compacted.String()))
	}

	outF, err := os.Create("setup_env.sh")
	if err != nil {
		log.Fatal(err.Error())
	}
	outF.WriteString("#!/bin/bash\n\n")
	outF.WriteString(fmt.Sprintf("export OFFER_SEARCH_WS_SOLR_URL=http://solr-%s-replica.internal:8983/solr/offers\n", tgtEnv))
	outF.WriteString(strings.Join(out, "\n"))
	outF.WriteString("\n")
	outF.Close()
	os.Chmod("setup_env.sh", 0777)
}
