// Copyright © 2019 the mhi authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/mhi-bio/mhi/src/index"
	"github.com/mhi-bio/mhi/src/minhash"
	"github.com/mhi-bio/mhi/src/misc"
	"github.com/mhi-bio/mhi/src/version"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

// the command line arguments
var (
	indexA   *string  // the first index file
	indexB   *string  // the second index file
	jsThresh *float64 // minimum Jaccard similarity for a neighborhood pair to be reported
)

// the compare command (used by cobra)
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare the neighborhood sketches of two indexes",
	Long:  `Compare the neighborhood sketches of two indexes`,
	Run: func(cmd *cobra.Command, args []string) {
		runCompare()
	},
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return misc.CheckRequiredFlags(cmd.Flags())
	},
}

// a function to initialise the command line arguments
func init() {
	indexA = compareCmd.Flags().StringP("indexA", "1", "", "first index file - required")
	indexB = compareCmd.Flags().StringP("indexB", "2", "", "second index file - required")
	jsThresh = compareCmd.Flags().Float64P("jsThresh", "j", 0.0, "minimum Jaccard similarity for a neighborhood pair to be reported")
	compareCmd.MarkFlagRequired("indexA")
	compareCmd.MarkFlagRequired("indexB")
	RootCmd.AddCommand(compareCmd)
}

//  a function to check user supplied parameters
func compareParamCheck() error {
	for _, file := range []string{*indexA, *indexB} {
		if err := misc.CheckFile(file); err != nil {
			return err
		}
		if err := misc.CheckExt(file, []string{"mhi"}); err != nil {
			return err
		}
	}
	if *jsThresh < 0.0 || *jsThresh > 1.0 {
		return fmt.Errorf("similarity threshold must be between 0.0 and 1.0")
	}
	return nil
}

/*
  The main function for the compare command
*/
func runCompare() {
	// set up profiling
	if *profiling == true {
		defer profile.Start(profile.ProfilePath("./")).Stop()
	}
	// start logging
	logFH := misc.StartLogging(*logFile)
	defer logFH.Close()
	log.SetOutput(logFH)
	log.Printf("this is mhi (version %s)", version.GetVersion())
	log.Printf("starting the compare subcommand")
	// check the supplied files and then log some stuff
	log.Printf("checking parameters...")
	misc.ErrorCheck(compareParamCheck())
	log.Printf("\tindex A: %v", *indexA)
	log.Printf("\tindex B: %v", *indexB)
	log.Printf("\tsimilarity threshold: %.2f", *jsThresh)
	// load both indexes and make sure they were built with matching parameters
	idxA, idxB := &index.Index{}, &index.Index{}
	misc.ErrorCheck(idxA.Load(*indexA))
	misc.ErrorCheck(idxB.Load(*indexB))
	misc.ErrorCheck(idxA.CompatibleWith(idxB))
	log.Printf("\tneighborhoods in A: %d", len(idxA.Sketches))
	log.Printf("\tneighborhoods in B: %d", len(idxB.Sketches))
	// compare all sketch pairs and report those above the threshold
	log.Printf("comparing sketches...")
	fmt.Fprintln(os.Stdout, "tagA\ttagB\tsimilarity")
	reported := 0
	for _, sketchA := range idxA.Sketches {
		for _, sketchB := range idxB.Sketches {
			similarity := minhash.Similarity(sketchA, sketchB)
			if similarity >= *jsThresh {
				fmt.Fprintf(os.Stdout, "%d\t%d\t%.4f\n", sketchA.Tag, sketchB.Tag, similarity)
				reported++
			}
		}
	}
	log.Printf("\tpairs compared: %d", len(idxA.Sketches)*len(idxB.Sketches))
	log.Printf("\tpairs reported: %d", reported)
	log.Println("finished")
}
