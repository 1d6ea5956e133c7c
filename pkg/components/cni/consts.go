package cni

// cniSpecVersion is the CNI spec version declared by the bridge descriptor,
// not the plugins release version.
const cniSpecVersion = "0.4.0"

// bridgeConfigTemplate is the fixed bridge network descriptor. Field names,
// values, and structure are part of the external contract; only the
// cniVersion field is substituted.
const bridgeConfigTemplate = `{
    "cniVersion": "%s",
    "name": "bridge",
    "type": "bridge",
    "bridge": "cni0",
    "isGateway": true,
    "ipMasq": true,
    "ipam": {
        "type": "host-local",
        "ranges": [
            [
                {
                    "subnet": "10.244.0.0/16",
                    "gateway": "10.244.0.1"
                }
            ]
        ],
        "routes": [
            {
                "dst": "0.0.0.0/0"
            }
        ]
    }
}
`
