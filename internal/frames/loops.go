package frames

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"cascii/internal/fileutil"
	"cascii/internal/services"
)

// Loop is a candidate segment: the frame at End repeats the frame at Start,
// so playing Start..End-1 can cycle seamlessly. Indices address the ordered
// frame list; the Frame fields carry the on-disk numbers for display.
type Loop struct {
	Start      int
	End        int
	StartFrame int
	EndFrame   int
}

type frameFile struct {
	number  int
	path    string
	content string
}

// FindLoops hashes every frame_*.txt under dir and reports non-adjacent
// repeats as loop candidates, ordered by position.
func FindLoops(dir string) ([]Loop, error) {
	list, err := loadFrameFiles(dir)
	if err != nil {
		return nil, err
	}

	hashToIndices := make(map[uint64][]int)
	var repeated []uint64
	for i, frame := range list {
		h := fnv.New64a()
		_, _ = h.Write([]byte(frame.content))
		sum := h.Sum64()
		hashToIndices[sum] = append(hashToIndices[sum], i)
		if len(hashToIndices[sum]) == 2 {
			repeated = append(repeated, sum)
		}
	}

	var loops []Loop
	for _, sum := range repeated {
		indices := hashToIndices[sum]
		for a := 0; a < len(indices)-1; a++ {
			for b := a + 1; b < len(indices); b++ {
				s, e := indices[a], indices[b]
				// Identical neighbors are a held frame, not a loop.
				if list[e].number > list[s].number+1 {
					loops = append(loops, Loop{
						Start:      s,
						End:        e,
						StartFrame: list[s].number,
						EndFrame:   list[e].number,
					})
				}
			}
		}
	}
	sort.Slice(loops, func(i, j int) bool {
		if loops[i].Start != loops[j].Start {
			return loops[i].Start < loops[j].Start
		}
		return loops[i].End < loops[j].End
	})
	return loops, nil
}

// ExportLoop copies the loop's span (both ends inclusive) into a sibling
// directory named <dir>_loop_<start>_<end>, renumbered from frame_0001, and
// returns the new directory.
func ExportLoop(dir string, lp Loop) (string, error) {
	list, err := loadFrameFiles(dir)
	if err != nil {
		return "", err
	}
	if err := validateLoop(lp, len(list)); err != nil {
		return "", err
	}

	base := filepath.Base(filepath.Clean(dir))
	out := filepath.Join(filepath.Dir(filepath.Clean(dir)),
		fmt.Sprintf("%s_loop_%d_%d", base, lp.StartFrame, lp.EndFrame))
	if err := os.MkdirAll(out, 0o755); err != nil {
		return "", err
	}

	counter := 1
	for i := lp.Start; i <= lp.End; i++ {
		dst := filepath.Join(out, fmt.Sprintf("frame_%04d.txt", counter))
		if err := fileutil.CopyFile(list[i].path, dst); err != nil {
			return "", err
		}
		counter++
	}
	return out, nil
}

// RepeatLoop splices a second pass of the loop's span in right after its end
// and rewrites the directory renumbered from frame_0001.
func RepeatLoop(dir string, lp Loop) error {
	list, err := loadFrameFiles(dir)
	if err != nil {
		return err
	}
	if err := validateLoop(lp, len(list)); err != nil {
		return err
	}

	sequence := make([]string, 0, len(list)+lp.End-lp.Start+1)
	for _, frame := range list[:lp.End+1] {
		sequence = append(sequence, frame.content)
	}
	for _, frame := range list[lp.Start : lp.End+1] {
		sequence = append(sequence, frame.content)
	}
	for _, frame := range list[lp.End+1:] {
		sequence = append(sequence, frame.content)
	}

	for _, frame := range list {
		if err := os.Remove(frame.path); err != nil {
			return err
		}
	}
	for i, content := range sequence {
		path := filepath.Join(dir, fmt.Sprintf("frame_%04d.txt", i+1))
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func validateLoop(lp Loop, total int) error {
	if lp.Start < 0 || lp.End >= total || lp.Start >= lp.End {
		return services.Wrap(services.ErrConfiguration, "frames", "loop",
			fmt.Sprintf("loop span %d..%d out of range for %d frames", lp.Start, lp.End, total), nil)
	}
	return nil
}

// loadFrameFiles reads every frame_*.txt under dir ordered by frame number.
func loadFrameFiles(dir string) ([]frameFile, error) {
	paths, err := listTextFrames(dir)
	if err != nil {
		return nil, err
	}

	list := make([]frameFile, 0, len(paths))
	for i, path := range paths {
		name := filepath.Base(path)
		numText := strings.TrimSuffix(strings.TrimPrefix(name, "frame_"), ".txt")
		number, parseErr := strconv.Atoi(numText)
		if parseErr != nil {
			number = i
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		list = append(list, frameFile{number: number, path: path, content: string(content)})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].number < list[j].number })
	return list, nil
}
