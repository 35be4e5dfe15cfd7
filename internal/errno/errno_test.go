package errno

import "testing"

func TestKindToErrno(t *testing.T) {
	tests := []struct {
		kind Kind
		want Errno
	}{
		{NoMem, ENOMEM},
		{InvalidArg, EINVAL},
		{Permission, EACCES},
		{AlreadyMapped, EEXIST},
		{NotMapped, EFAULT},
		{NotFound, ENOENT},
		{Interrupted, EINTR},
		{IOFailure, EIO},
		{NotImplemented, ENOSYS},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := tt.kind.ToErrno(); got != tt.want {
				t.Errorf("Kind(%s).ToErrno() = %d, want %d", tt.kind, got, tt.want)
			}
		})
	}
}

func TestToErrnoNilIsSuccess(t *testing.T) {
	if got := ToErrno(nil); got != 0 {
		t.Errorf("ToErrno(nil) = %d, want 0", got)
	}
}

func TestToErrnoWrapsKernelError(t *testing.T) {
	err := New(NotMapped, "vmm.HandleFault")
	if got := ToErrno(err); got != EFAULT {
		t.Errorf("ToErrno(%v) = %d, want %d", err, got, EFAULT)
	}
	if err.Error() == "" {
		t.Errorf("KernelError.Error() returned empty string")
	}
}
